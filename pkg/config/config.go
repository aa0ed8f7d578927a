package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

const (
	configDir  string = "leb128"
	configFile string = "config.yml"
)

// Config defines all configuration options available to be set through the config file.
type Config struct {
	// DefaultType is the integer type used when --type is not given
	// (u8, u16, u32, u64, u128, usize, i8, i16, i32, i64, i128, isize).
	DefaultType string `yaml:"default-type"`

	// Output is the format used to print encoded bytes: hex, bytes or
	// binary.
	Output string `yaml:"output"`

	// Terminal command aliases.
	Aliases map[string][]string `yaml:"aliases"`

	// MaxHistory is the maximum number of lines kept in the terminal
	// history file.
	MaxHistory *int `yaml:"max-history,omitempty"`

	// If DisableColors is true the terminal will not color the groups of
	// encoded values.
	DisableColors bool `yaml:"disable-colors"`
}

// LoadConfig attempts to populate a Config object from the config.yml file.
func LoadConfig() *Config {
	err := createConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not create config directory: %v.\n", err)
		return &Config{}
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to get config file path: %v.\n", err)
		return &Config{}
	}

	if _, err := os.Stat(fullConfigFile); os.IsNotExist(err) {
		if err := createDefaultConfig(fullConfigFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating default config file: %v\n", err)
			return &Config{}
		}
	}

	c, err := loadConfigFile(fullConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v.\n", err)
		return &Config{}
	}
	return c
}

func loadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("unable to read config data: %v", err)
	}

	var c Config
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config file: %v", err)
	}
	return &c, nil
}

// SaveConfig will marshal and save the config struct
// to disk.
func SaveConfig(conf *Config) error {
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(*conf)
	if err != nil {
		return err
	}

	f, err := os.Create(fullConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(out)
	return err
}

// HistoryLimit returns the maximum number of terminal history lines to keep.
func (c *Config) HistoryLimit() int {
	if c.MaxHistory == nil {
		return 1000
	}
	return *c.MaxHistory
}

func createDefaultConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create config file: %v", err)
	}
	defer f.Close()
	err = writeDefaultConfig(f)
	if err != nil {
		return fmt.Errorf("unable to write default configuration: %v", err)
	}
	return nil
}

func writeDefaultConfig(f io.StringWriter) error {
	_, err := f.WriteString(
		`# Configuration file for the leb128 tool.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.

# Integer type used when --type is not specified.
# default-type: u64

# Format used to print encoded bytes: hex, bytes or binary.
# output: hex

# Provided aliases will be added to the default aliases for a given terminal command.
aliases:
  # command: ["alias1", "alias2"]

# Maximum number of lines kept in the terminal history.
# max-history: 1000

# Uncomment the following line to print encoded groups without colors.
# disable-colors: true
`)
	return err
}

// createConfigPath creates the directory structure at which all config files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
// The configuration directory is $XDG_CONFIG_HOME/leb128, or the
// platform's user configuration directory.
func GetConfigFilePath(file string) (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, configDir, file), nil
}
