package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLoadDefaultConfig(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only honored on linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	conf := LoadConfig()
	if conf.DefaultType != "" || conf.Output != "" || conf.HistoryLimit() != 1000 {
		t.Fatalf("unexpected default configuration %#v", conf)
	}

	data, err := os.ReadFile(filepath.Join(dir, configDir, configFile))
	if err != nil {
		t.Fatalf("default configuration file not created: %v", err)
	}
	if !strings.Contains(string(data), "# default-type: u64") {
		t.Fatalf("unexpected default configuration file:\n%s", data)
	}

	conf.DefaultType = "i32"
	conf.Aliases = map[string][]string{"encode": {"e"}}
	if err := SaveConfig(conf); err != nil {
		t.Fatal(err)
	}
	conf = LoadConfig()
	if conf.DefaultType != "i32" || len(conf.Aliases["encode"]) != 1 || conf.Aliases["encode"][0] != "e" {
		t.Fatalf("configuration not saved: %#v", conf)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	err := os.WriteFile(path, []byte("default-type: i16\noutput: binary\nmax-history: 10\naliases:\n  decode: [d, dec]\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	conf, err := loadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if conf.DefaultType != "i16" || conf.Output != "binary" || conf.HistoryLimit() != 10 {
		t.Fatalf("unexpected configuration %#v", conf)
	}
	if len(conf.Aliases["decode"]) != 2 {
		t.Fatalf("unexpected aliases %#v", conf.Aliases)
	}

	if err := os.WriteFile(path, []byte("default-type: [\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfigFile(path); err == nil {
		t.Fatal("expected an error decoding an invalid file")
	}
}
