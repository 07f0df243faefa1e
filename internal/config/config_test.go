package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Model != "llama-3.3-70b-versatile" {
		t.Errorf("default model = %q", c.Model)
	}
	if c.ListenAddr != ":8080" {
		t.Errorf("default listen addr = %q", c.ListenAddr)
	}
	if c.ExecTimeoutSec != 10 {
		t.Errorf("default exec timeout = %d", c.ExecTimeoutSec)
	}
	if c.MaxUploadMB != 32 {
		t.Errorf("default upload cap = %d", c.MaxUploadMB)
	}
}

func TestLoadAPIKeyFromGroqEnv(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	c, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.APIKey != "gsk_test" {
		t.Errorf("api key = %q, want gsk_test", c.APIKey)
	}
}

func TestLoadPrefixedEnvOverridesFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgFile, []byte("model: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANALYST_MODEL", "from-env")
	c, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Model != "from-env" {
		t.Errorf("model = %q, env should beat the file", c.Model)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	in := &Global{
		APIKey:     "gsk_saved",
		Model:      "custom-model",
		ListenAddr: ":9999",
	}
	if err := Save(in, cfgFile); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(cfgFile)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
	out, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.APIKey != in.APIKey || out.ListenAddr != in.ListenAddr {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if out.Model != "custom-model" {
		t.Errorf("model = %q", out.Model)
	}
}
