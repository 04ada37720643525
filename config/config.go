package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug              = "debug"
	ConfigDecks              = "decks"
	ConfigThreads            = "threads"
	ConfigMemo               = "memo"
	ConfigMemoMemoryFraction = "memo-memory-fraction"
	ConfigSamplesPath        = "samples-path"
	ConfigDataPath           = "data-path"
	ConfigStore              = "store"
	ConfigSQLitePath         = "sqlite-path"
	ConfigNatsURL            = "nats-url"
	ConfigNatsChannel        = "nats-channel"
	ConfigCPUProfile         = "cpu-profile"
	ConfigOutputFormat       = "output-format"
)

type Config struct {
	*viper.Viper
}

func DefaultConfig() *Config {
	c := &Config{viper.New()}
	setDefaults(c.Viper)
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigDecks, 8)
	v.SetDefault(ConfigThreads, runtime.NumCPU())
	v.SetDefault(ConfigMemo, true)
	v.SetDefault(ConfigMemoMemoryFraction, 0.25)
	v.SetDefault(ConfigSamplesPath, "./data/decks.csv")
	v.SetDefault(ConfigDataPath, "./data/data.csv")
	v.SetDefault(ConfigStore, "csv")
	v.SetDefault(ConfigSQLitePath, "./data/advantages.db")
	v.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	v.SetDefault(ConfigNatsChannel, "shoeval.bot")
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigOutputFormat, "text")
}

// Load reads settings from, in increasing priority, defaults, SHOEVAL_
// environment variables and --key=value arguments. It returns the
// positional arguments left over.
func (c *Config) Load(args []string) ([]string, error) {
	c.Viper = viper.New()
	setDefaults(c.Viper)

	fs := pflag.NewFlagSet("shoeval", pflag.ContinueOnError)
	// flags after the first positional argument belong to the command
	fs.SetInterspersed(false)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigDecks, 8, "52-card decks in a full shoe")
	fs.Int(ConfigThreads, runtime.NumCPU(), "worker goroutines")
	fs.Bool(ConfigMemo, true, "memoize subproblems")
	fs.Float64(ConfigMemoMemoryFraction, 0.25, "fraction of system memory the memo table may use")
	fs.String(ConfigSamplesPath, "./data/decks.csv", "shoe samples to evaluate")
	fs.String(ConfigDataPath, "./data/data.csv", "CSV file of computed advantages")
	fs.String(ConfigStore, "csv", "advantage store: csv or sqlite")
	fs.String(ConfigSQLitePath, "./data/advantages.db", "SQLite advantage store")
	fs.String(ConfigNatsURL, "nats://localhost:4222", "NATS server for the bot")
	fs.String(ConfigNatsChannel, "shoeval.bot", "NATS subject the bot answers on")
	fs.String(ConfigCPUProfile, "", "write a CPU profile here")
	fs.String(ConfigOutputFormat, "text", "report format: text, yaml or json")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	// only flags actually given override the environment
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if err := c.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	c.SetEnvPrefix("shoeval")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	return fs.Args(), nil
}

// AdjustRelativePaths makes the file paths in the config absolute, relative
// to basePath.
func (c *Config) AdjustRelativePaths(basePath string) {
	for _, key := range []string{ConfigSamplesPath, ConfigDataPath, ConfigSQLitePath} {
		c.Set(key, toAbsPath(basePath, c.GetString(key)))
	}
}

func toAbsPath(basePath, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(basePath, path)
}

// SanitizedSettings are the settings safe to log.
func (c *Config) SanitizedSettings() map[string]any {
	settings := c.AllSettings()
	if u, ok := settings[ConfigNatsURL].(string); ok && strings.Contains(u, "@") {
		settings[ConfigNatsURL] = "(redacted)"
	}
	return settings
}

func (c *Config) String() string {
	return fmt.Sprintf("%v", c.SanitizedSettings())
}
