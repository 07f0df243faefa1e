package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/mrityunjay5004/personal-ai-data-analyst/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or modify configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		key := "(not set)"
		if cfg.APIKey != "" {
			key = "(set)"
		}
		fmt.Println("api_key:", key)
		fmt.Println("model:", cfg.Model)
		fmt.Println("listen_addr:", cfg.ListenAddr)
		fmt.Println("http_timeout_sec:", cfg.HTTPTimeoutSec)
		fmt.Println("exec_timeout_sec:", cfg.ExecTimeoutSec)
		fmt.Println("max_upload_mb:", cfg.MaxUploadMB)
		fmt.Println("preview_rows:", cfg.PreviewRows)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		switch key {
		case "api_key":
			cfg.APIKey = val
		case "model":
			cfg.Model = val
		case "base_url":
			cfg.BaseURL = val
		case "listen_addr":
			cfg.ListenAddr = val
		case "http_timeout_sec", "exec_timeout_sec", "max_upload_mb", "preview_rows", "retry_max_attempts":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s wants an integer: %w", key, err)
			}
			switch key {
			case "http_timeout_sec":
				cfg.HTTPTimeoutSec = n
			case "exec_timeout_sec":
				cfg.ExecTimeoutSec = n
			case "max_upload_mb":
				cfg.MaxUploadMB = n
			case "preview_rows":
				cfg.PreviewRows = n
			case "retry_max_attempts":
				cfg.RetryMaxAttempts = n
			}
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("✓ Saved", key)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
