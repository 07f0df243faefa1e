package main

import "github.com/mrityunjay5004/personal-ai-data-analyst/cmd"

func main() {
	cmd.Execute()
}
