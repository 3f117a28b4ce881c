package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"twigascan/internal/platform/logger"
	"twigascan/internal/scan/providers"
)

const envPrefix = "TWIGA"

// settings are resolved from flags first, then TWIGA_* env vars.
type settings struct {
	Providers          string
	Offline            bool
	DomainCheckTimeout time.Duration
	LogLevel           string
}

func rootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "twigascan",
		Short:         "Parse and verify Bitcoin and Lightning payment QR content",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("providers", "", "provider registry YAML file (default: built-in table)")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = v.BindPFlags(root.PersistentFlags())

	root.AddCommand(scanCmd(v))
	root.AddCommand(providersCmd(v))
	return root
}

func loadSettings(v *viper.Viper) settings {
	return settings{
		Providers:          v.GetString("providers"),
		Offline:            v.GetBool("offline"),
		DomainCheckTimeout: v.GetDuration("domain-check-timeout"),
		LogLevel:           v.GetString("log-level"),
	}
}

func newLogger(cmd *cobra.Command, s settings) *slog.Logger {
	return logger.NewWithWriter(cmd.ErrOrStderr(), s.LogLevel, "text")
}

func loadRegistry(s settings) (*providers.Registry, error) {
	return providers.LoadFile(s.Providers)
}
