package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/adbudget-cli/internal/advisor"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Input layout
	SkipRows    int    `mapstructure:"skip_rows" yaml:"skip_rows"`
	TotalMarker string `mapstructure:"total_marker" yaml:"total_marker"`
	AccountRow  string `mapstructure:"account_row" yaml:"account_row"`
	Placeholder string `mapstructure:"placeholder" yaml:"placeholder"`

	// Classifier rules
	NearAverageBand      float64 `mapstructure:"near_average_band" yaml:"near_average_band"`
	DecreaseFactor       float64 `mapstructure:"decrease_factor" yaml:"decrease_factor"`
	SlightIncreaseFactor float64 `mapstructure:"slight_increase_factor" yaml:"slight_increase_factor"`
	IncreaseFactor       float64 `mapstructure:"increase_factor" yaml:"increase_factor"`

	// Output
	Extended bool   `mapstructure:"extended" yaml:"extended"`
	Glyphs   bool   `mapstructure:"glyphs" yaml:"glyphs"`
	RunsDir  string `mapstructure:"runs_dir" yaml:"runs_dir"`

	// HTTP server
	ServeAddr   string   `mapstructure:"serve_addr" yaml:"serve_addr"`
	MaxUploadMB int      `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Rules returns the classifier rules held by the configuration.
func (c *Global) Rules() advisor.Rules {
	return advisor.Rules{
		NearAverageBand:      c.NearAverageBand,
		DecreaseFactor:       c.DecreaseFactor,
		SlightIncreaseFactor: c.SlightIncreaseFactor,
		IncreaseFactor:       c.IncreaseFactor,
	}
}

// AdvisorOptions maps the configuration onto advisor.Options.
func (c *Global) AdvisorOptions() advisor.Options {
	return advisor.Options{
		TotalMarker: c.TotalMarker,
		AccountRow:  c.AccountRow,
		Placeholder: c.Placeholder,
		Rules:       c.Rules(),
		Extended:    c.Extended,
		Glyphs:      c.Glyphs,
	}
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	c.RunsDir = defaultRunsDir()
	return &c
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.adbudget/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true)
}

// LoadPersisted loads only what is stored on disk: defaults overlaid with the
// config file. Environment variables are ignored and a missing file yields
// defaults, so the result is safe to hand back to Save.
func LoadPersisted(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, withEnv bool) (*Global, error) {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix("ADBUDGET")
		v.AutomaticEnv()
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; a malformed one is not. An
		// explicit path that does not exist only fails the effective load.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && (withEnv || !errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.RunsDir == "" {
		c.RunsDir = defaultRunsDir()
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	rules := advisor.DefaultRules()
	opts := advisor.DefaultOptions()

	v.SetDefault("skip_rows", 2)
	v.SetDefault("total_marker", opts.TotalMarker)
	v.SetDefault("account_row", opts.AccountRow)
	v.SetDefault("placeholder", opts.Placeholder)
	v.SetDefault("near_average_band", rules.NearAverageBand)
	v.SetDefault("decrease_factor", rules.DecreaseFactor)
	v.SetDefault("slight_increase_factor", rules.SlightIncreaseFactor)
	v.SetDefault("increase_factor", rules.IncreaseFactor)
	v.SetDefault("extended", opts.Extended)
	v.SetDefault("glyphs", opts.Glyphs)
	v.SetDefault("runs_dir", "")
	v.SetDefault("serve_addr", "127.0.0.1:8080")
	v.SetDefault("max_upload_mb", 20)
	v.SetDefault("cors_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

func defaultRunsDir() string {
	dir, err := configDir()
	if err != nil {
		return filepath.Join(".adbudget", "runs")
	}
	return filepath.Join(dir, "runs")
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".adbudget"), nil
}
