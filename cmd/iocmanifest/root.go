package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/junioryono/ioc/manifest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

// config is read from flags, IOC_* environment variables and an optional
// .iocmanifest.yaml in the working directory.
type config struct {
	Manifest string `mapstructure:"manifest"`
	Format   string `mapstructure:"format"`
	Verbose  bool   `mapstructure:"verbose"`
}

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "iocmanifest",
		Short: "Validate and inspect container manifests",
		Long: `Validate and inspect YAML manifests that wire an ioc container.

Settings come from flags, IOC_* environment variables (IOC_MANIFEST,
IOC_FORMAT, IOC_VERBOSE) and an optional .iocmanifest.yaml file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ./.iocmanifest.yaml)")
	root.PersistentFlags().StringP("manifest", "m", "ioc.yaml",
		"path to the manifest")
	root.PersistentFlags().BoolP("verbose", "v", false,
		"log debug output to stderr")

	_ = a.v.BindPFlag("manifest", root.PersistentFlags().Lookup("manifest"))
	_ = a.v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(newValidateCmd(a), newShowCmd(a))
	return root
}

func (a *app) initConfig() error {
	a.v.SetEnvPrefix("IOC")
	a.v.AutomaticEnv()
	a.v.SetDefault("format", "table")

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName(".iocmanifest")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}

	if a.cfg.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		a.logger = logger
	}

	a.logger.Debug("configuration loaded",
		zap.String("config", a.v.ConfigFileUsed()),
		zap.String("manifest", a.cfg.Manifest),
		zap.String("format", a.cfg.Format),
	)
	return nil
}

// load reads the configured manifest.
func (a *app) load() (*manifest.Manifest, error) {
	a.logger.Debug("loading manifest", zap.String("path", a.cfg.Manifest))

	m, err := manifest.Load(a.cfg.Manifest)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("manifest loaded",
		zap.Int("bindings", len(m.Bindings)),
		zap.Int("instances", len(m.Instances)),
		zap.Int("contextual", len(m.Contextual)),
	)
	return m, nil
}
