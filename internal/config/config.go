package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig              `mapstructure:"logger" yaml:"logger"`
	Pipeline PipelineConfig            `mapstructure:"pipeline" yaml:"pipeline"`
	Agents   map[string]map[string]any `mapstructure:"agents" yaml:"agents"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// PipelineConfig configures the pipeline runner and its persistence.
type PipelineConfig struct {
	// BaseDir is the root under which per-pipeline working directories are
	// created (pipeline_<id>/...).
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
	// StateFile is the JSON file that records the state of all pipelines.
	StateFile string `mapstructure:"state_file" yaml:"state_file"`
	// AgentOrder lists agent ids in execution order.
	AgentOrder []string `mapstructure:"agent_order" yaml:"agent_order"`
	// BatchConcurrency caps how many pipelines run at once in batch mode.
	BatchConcurrency int `mapstructure:"batch_concurrency" yaml:"batch_concurrency"`
}

// AgentOptions returns the free-form options mapping for the given agent id.
// Agents treat this mapping as opaque configuration; missing ids yield nil,
// which every agent accepts.
func (c *Config) AgentOptions(agentID string) map[string]any {
	return c.Agents[agentID]
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "templatepipe")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Pipeline --
	v.SetDefault("pipeline.base_dir", "pipeline_output")
	v.SetDefault("pipeline.state_file", "pipeline_state.json")
	v.SetDefault("pipeline.agent_order", []string{"cta_optimizer", "seo_optimizer", "packager"})
	v.SetDefault("pipeline.batch_concurrency", 4)
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with pure defaults, but fail loudly if it does.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Pipeline.BaseDir == "" {
		return fmt.Errorf("pipeline.base_dir must not be empty")
	}
	if c.Pipeline.StateFile == "" {
		return fmt.Errorf("pipeline.state_file must not be empty")
	}
	if c.Pipeline.BatchConcurrency <= 0 {
		return fmt.Errorf("pipeline.batch_concurrency must be a positive integer")
	}
	if len(c.Pipeline.AgentOrder) == 0 {
		return fmt.Errorf("pipeline.agent_order must name at least one agent")
	}
	return nil
}
