package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gofrs/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/psyk-lang/psyk"
	"github.com/psyk-lang/psyk/compiler"
	"github.com/psyk-lang/psyk/vm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the state shared by every command of one invocation.
type app struct {
	config *viper.Viper
	logger zerolog.Logger
	runID  string
}

var globalFlags = []string{
	"no-color",
	"log-level",
	"trace",
	"seed",
	"random-min",
	"random-max",
	"heap-base",
}

func newRootCommand() *cobra.Command {
	a := &app{config: viper.New(), logger: zerolog.Nop()}
	root := &cobra.Command{
		Use:           "psyk",
		Short:         "Compile and run psyk programs",
		Long:          "psyk compiles syntax trees into a textual instruction stream and runs instruction streams on a virtual machine.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.psyk.yaml)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-level", "warn", "Log level: trace, debug, info, warn or error")
	flags.Bool("trace", false, "Log every executed instruction")
	flags.Uint64("seed", 0, "Seed for random reads (0 picks a random seed)")
	flags.Int64("random-min", vm.DefaultRandomLow, "Smallest value a random read produces")
	flags.Int64("random-max", vm.DefaultRandomHigh, "Largest value a random read produces")
	flags.Int64("heap-base", compiler.DefaultHeapBase, "Initial value of the heap pointer s0")
	for _, name := range globalFlags {
		_ = a.config.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		a.compileCommand(),
		a.runCommand(),
		a.evalCommand(),
		a.disCommand(),
		a.checkCommand(),
		a.versionCommand(),
	)
	return root
}

// setup reads configuration and prepares the logger. Flags win over
// environment variables, which win over the config file.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.loadConfig(cmd); err != nil {
		return err
	}
	// Reads global flags and adjusts the environment accordingly.
	if a.config.GetBool("no-color") {
		color.NoColor = true
	}
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	a.runID = id.String()
	level := a.config.GetString("log-level")
	if a.config.GetBool("trace") {
		level = zerolog.LevelTraceValue
	}
	a.logger, err = newLogger(cmd.ErrOrStderr(), level, a.runID)
	if err != nil {
		return err
	}
	a.logger.Debug().Str("command", cmd.Name()).Msg("starting")
	return nil
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		a.config.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}
		a.config.AddConfigPath(home)
		a.config.SetConfigName(".psyk")
		a.config.SetConfigType("yaml")
	}
	a.config.SetEnvPrefix("psyk")
	a.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.config.AutomaticEnv()
	if err := a.config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// options translates configuration into evaluation options. Programs read
// from input, which is stdin unless the program text itself came from
// stdin.
func (a *app) options(cmd *cobra.Command, input io.Reader) []psyk.Option {
	opts := []psyk.Option{
		psyk.WithLogger(a.logger),
		psyk.WithHeapBase(a.config.GetInt64("heap-base")),
		psyk.WithRandomRange(a.config.GetInt64("random-min"), a.config.GetInt64("random-max")),
		psyk.WithOutput(cmd.OutOrStdout()),
		psyk.WithInput(input),
	}
	if seed := a.config.GetUint64("seed"); seed != 0 {
		opts = append(opts, psyk.WithSeed(seed))
	}
	if a.config.GetBool("trace") {
		opts = append(opts, psyk.WithTrace())
	}
	return opts
}

func (a *app) compileOptions() []psyk.Option {
	return []psyk.Option{
		psyk.WithLogger(a.logger),
		psyk.WithHeapBase(a.config.GetInt64("heap-base")),
	}
}

// programInput picks the reader character reads consume.
func programInput(cmd *cobra.Command, sourceFromStdin bool) io.Reader {
	if sourceFromStdin {
		return strings.NewReader("")
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return newKeyboardReader()
	}
	return in
}
