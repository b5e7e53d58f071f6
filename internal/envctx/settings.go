package envctx

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds tool-level configuration: everything that is
// deployment-site specific rather than per-invocation. Loaded from an
// optional config file with KUBESHIP_* environment overrides.
type Settings struct {
	Registry  RegistrySettings  `mapstructure:"registry"`
	Templates TemplateSettings  `mapstructure:"templates"`
	Output    OutputSettings    `mapstructure:"output"`
	Tracing   TracingSettings   `mapstructure:"tracing"`
	Log       LogSettings       `mapstructure:"log"`
}

// RegistrySettings identifies the image registry account. The account id is
// deliberately not defaulted: it is site-specific and must come from
// configuration.
type RegistrySettings struct {
	AccountID string `mapstructure:"account_id"`
	Region    string `mapstructure:"region"`
	// Host overrides the ECR endpoint derived from account and region,
	// for sites pushing to a different registry.
	Host string `mapstructure:"host"`
}

type TemplateSettings struct {
	Dir string `mapstructure:"dir"`
}

type OutputSettings struct {
	Dir string `mapstructure:"dir"`
}

// TracingSettings configure the agent baked into Java images.
type TracingSettings struct {
	Collector string `mapstructure:"collector"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadSettings reads settings from configPath (optional; defaults apply
// when empty or absent) and from KUBESHIP_* environment variables.
func LoadSettings(configPath string) (Settings, error) {
	v := viper.New()

	v.SetDefault("registry.account_id", "")
	v.SetDefault("registry.region", "us-east-1")
	v.SetDefault("templates.dir", "deploy/templates")
	v.SetDefault("output.dir", "deploy/rendered")
	v.SetDefault("tracing.collector", "skywalking-oap.tracing:11800")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName(".kubeship")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // optional
	}

	v.SetEnvPrefix("KUBESHIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return s, nil
}
