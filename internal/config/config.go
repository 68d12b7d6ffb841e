// Package config carries the runtime tunables. Values come from
// built-in defaults, an optional keyjoyd.yaml (working directory or
// /etc) and KEYJOYD_* environment variables, in ascending precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// CompanionCmd is the console's primary application, stopped while
	// the remap UI owns the screen and restarted afterwards.
	CompanionCmd string `mapstructure:"companion_cmd"`
	// RestartGrace is slept after restarting the companion before
	// translation resumes.
	RestartGrace time.Duration `mapstructure:"restart_grace"`
	// SettleDelay gives the kernel time to register the virtual device
	// before keyboards are grabbed.
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	// Debounce is the capture window during which a freshly bound
	// key's mechanical bounce is discarded.
	Debounce time.Duration `mapstructure:"debounce"`
	// Frame and Blink set the remap UI cadence.
	Frame time.Duration `mapstructure:"frame"`
	Blink time.Duration `mapstructure:"blink"`
	// ExportRoot is where the directory browser starts.
	ExportRoot string `mapstructure:"export_root"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("companion_cmd", "the64")
	v.SetDefault("restart_grace", 500*time.Millisecond)
	v.SetDefault("settle_delay", 500*time.Millisecond)
	v.SetDefault("debounce", 200*time.Millisecond)
	v.SetDefault("frame", 16*time.Millisecond)
	v.SetDefault("blink", 400*time.Millisecond)
	v.SetDefault("export_root", "/mnt")

	v.SetConfigName("keyjoyd")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("KEYJOYD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
