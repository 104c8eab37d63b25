// Package main provides the entry point for the voicesim CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/voicesim/internal/config"
	"github.com/dgnsrekt/voicesim/internal/orchestrator"
	"github.com/dgnsrekt/voicesim/internal/tracing"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	simConfig  config.Config

	rootCmd = &cobra.Command{
		Use:   "voicesim",
		Short: "Simulate a voice-command pipeline on the CLI",
		Long: paragraph(
			fmt.Sprintf("\nSimulate a %s: a microphone hears commands, a processor executes them and a monitor reports health.", keyword("voice-command pipeline")),
		),
		Example:          paragraph("voicesim\nvoicesim --duration 30s --heartbeat 1s\nvoicesim --min-delay 50ms --max-delay 200ms --debug"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// loadConfigFile reads an explicitly requested config file.
func loadConfigFile(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("config") {
		return nil
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read config file %s: %w", configFile, err)
	}
	log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	if err := loadConfigFile(cmd); err != nil {
		return err
	}

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}
	simConfig = cfg
	return nil
}

func execute(cmd *cobra.Command, _ []string) error {
	o, err := orchestrator.New(simConfig, orchestrator.WithLogger(log.Default()))
	if err != nil {
		return fmt.Errorf("unable to set up simulation: %w", err)
	}

	// The first signal shuts down gracefully, a second one escalates.
	ctx, cancel := orchestrator.WatchSignals(cmd.Context(), log.Default(), func() {
		_ = o.EmergencyStop("repeated shutdown signal")
	})
	defer cancel()

	if simConfig.TraceFile != "" {
		shutdown, err := tracing.Init("voicesim", Version, simConfig.TraceFile)
		if err != nil {
			return fmt.Errorf("unable to start tracing: %w", err)
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				log.Warn("Could not flush traces", "err", err)
			}
		}()
		log.Debug("Tracing enabled", "file", simConfig.TraceFile)
	}

	log.Debug("Starting simulation", "runFor", simConfig.RunFor, "commands", simConfig.Commands)
	if err := o.Run(ctx); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	defaults := config.Default()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().Bool("debug", false, "log diagnostics at debug level")
	rootCmd.Flags().DurationP("duration", "d", defaults.RunFor, "how long to run the simulation")
	rootCmd.Flags().Duration("min-delay", defaults.MinDelay, "shortest pause before the microphone hears a command")
	rootCmd.Flags().Duration("max-delay", defaults.MaxDelay, "longest pause before the microphone hears a command")
	rootCmd.Flags().Duration("poll-timeout", defaults.PollTimeout, "how long the processor waits on an empty queue")
	rootCmd.Flags().Duration("work", defaults.WorkDuration, "simulated execution time per command")
	rootCmd.Flags().Duration("heartbeat", defaults.Heartbeat, "interval between health reports")
	rootCmd.Flags().StringSlice("commands", defaults.Commands, "commands the microphone can hear")
	rootCmd.Flags().Int64("seed", 0, "seed for the microphone's random source (0 uses the clock)")
	rootCmd.Flags().String("trace-file", "", "write OpenTelemetry spans to this file")

	// Config bindings
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag(config.KeyRunFor, rootCmd.Flags().Lookup("duration"))
	_ = viper.BindPFlag(config.KeyMinDelay, rootCmd.Flags().Lookup("min-delay"))
	_ = viper.BindPFlag(config.KeyMaxDelay, rootCmd.Flags().Lookup("max-delay"))
	_ = viper.BindPFlag(config.KeyPollTimeout, rootCmd.Flags().Lookup("poll-timeout"))
	_ = viper.BindPFlag(config.KeyWork, rootCmd.Flags().Lookup("work"))
	_ = viper.BindPFlag(config.KeyHeartbeat, rootCmd.Flags().Lookup("heartbeat"))
	_ = viper.BindPFlag(config.KeyCommands, rootCmd.Flags().Lookup("commands"))
	_ = viper.BindPFlag(config.KeySeed, rootCmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag(config.KeyTraceFile, rootCmd.Flags().Lookup("trace-file"))

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "voicesim")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "voicesim")}, dirs...)
	}

	if c := os.Getenv("VOICESIM_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("voicesim")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("voicesim")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], "voicesim.yml")
}
