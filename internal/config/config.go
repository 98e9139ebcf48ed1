// Package config loads skilltree settings from config.yaml, SKILLTREE_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/abhisek/skilltree/internal/skilltree"
)

const (
	appName        = "skilltree"
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "SKILLTREE"

	KeyFile           = "file"
	KeyPolicy         = "policy"
	KeyDB             = "db"
	KeyHistoryKeep    = "history.keep"
	KeyHistoryEnabled = "history.enabled"
	KeyVerbose        = "verbose"

	DefaultFile        = "skilltree.json"
	DefaultHistoryKeep = 20
)

// DefaultYAML is the content written by `skilltree config init`.
const DefaultYAML = `# skilltree configuration

# Tree file opened when --file is not given.
file: skilltree.json

# Completion policy: cascade (toggle any skill, pushes down to sub-skills)
# or leaf-only (only skills without sub-skills can be marked).
policy: cascade

# Snapshot history database. Defaults to $XDG_DATA_HOME/skilltree/history.db.
# db:

history:
  enabled: true
  keep: 20
`

// Config is the resolved configuration.
type Config struct {
	File    string
	Policy  skilltree.Policy
	DB      string
	Verbose bool
	History History
}

// History controls the snapshot archive written on every save.
type History struct {
	Enabled bool
	Keep    int
}

// New returns a viper instance with defaults, env binding and, if present,
// the config file. An explicit path that does not exist is an error; a
// missing file in the default location is not.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(KeyFile, DefaultFile)
	v.SetDefault(KeyPolicy, skilltree.DefaultPolicy.String())
	v.SetDefault(KeyDB, "")
	v.SetDefault(KeyHistoryKeep, DefaultHistoryKeep)
	v.SetDefault(KeyHistoryEnabled, true)
	v.SetDefault(KeyVerbose, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	dir, err := Dir()
	if err != nil {
		return v, nil
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// Load resolves a Config from v.
func Load(v *viper.Viper) (Config, error) {
	policy, err := skilltree.ParsePolicy(v.GetString(KeyPolicy))
	if err != nil {
		return Config{}, err
	}
	keep := v.GetInt(KeyHistoryKeep)
	if keep < 0 {
		return Config{}, fmt.Errorf("%s must not be negative, got %d", KeyHistoryKeep, keep)
	}
	file := strings.TrimSpace(v.GetString(KeyFile))
	if file == "" {
		file = DefaultFile
	}
	return Config{
		File:    file,
		Policy:  policy,
		DB:      v.GetString(KeyDB),
		Verbose: v.GetBool(KeyVerbose),
		History: History{
			Enabled: v.GetBool(KeyHistoryEnabled),
			Keep:    keep,
		},
	}, nil
}

// Dir returns $XDG_CONFIG_HOME/skilltree, falling back to ~/.config/skilltree.
func Dir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns $XDG_DATA_HOME/skilltree.
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns $XDG_STATE_HOME/skilltree.
func StateDir() (string, error) {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, fallback)
	}
	return filepath.Join(base, appName), nil
}

// WriteDefault creates path with DefaultYAML. An existing file is left
// alone and reported as created=false.
func WriteDefault(path string) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultYAML), 0o644); err != nil {
		return false, fmt.Errorf("write config file: %w", err)
	}
	return true, nil
}

// DefaultPath is the config file read when --config is not given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName+"."+configFileType), nil
}
