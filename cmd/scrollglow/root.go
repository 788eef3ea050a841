package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lixenwraith/scrollglow/config"
	"github.com/lixenwraith/scrollglow/logging"
)

// app carries state shared by subcommands after PersistentPreRunE
type app struct {
	v        *viper.Viper
	cfgFile  string
	cfg      *config.Config
	log      *zap.Logger
	closeLog func()
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), closeLog: func() {}}

	root := &cobra.Command{
		Use:           "scrollglow",
		Short:         "Scroll-driven particle choreography in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.closeLog()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "YAML config file")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newSnapshotCmd(a))
	return root
}

// init loads configuration and opens the log file
func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	logger, closeLog, err := logging.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = logger
	a.closeLog = closeLog
	return nil
}

// bindFlag maps a command flag onto a config key, an unchanged flag leaves the key alone
func (a *app) bindFlag(cmd *cobra.Command, key, flag string) {
	if err := a.v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}
