package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/voicesim/internal/config"
)

const defaultConfig = `# how long the simulation runs
run_for: "10s"

# the microphone hears a command after a random pause in [min_delay, max_delay]
min_delay: "500ms"
max_delay: "1500ms"

# how long the processor waits on an empty queue before polling again
poll_timeout: "100ms"
# simulated execution time per command
work: "500ms"

# interval between "System OK" reports
heartbeat: "3s"

# commands the microphone can hear
commands:
  - "turn on the light"
  - "move forward"
  - "stop"

# fix the microphone's random source (0 uses the clock)
# seed: 42

# write OpenTelemetry spans to a file
# trace_file: "~/voicesim-trace.json"
`

var printConfig bool

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the voicesim config file",
	Long:    paragraph(fmt.Sprintf("\n%s the voicesim config file. We'll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("voicesim config\nvoicesim config --config path/to/config.yml\nvoicesim config --print"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if printConfig {
			return printEffectiveConfig(cmd)
		}

		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("voicesim", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&printConfig, "print", false, "print the effective configuration as YAML")
}

// printEffectiveConfig writes the merged defaults, file, environment and
// flags in config-file form.
func printEffectiveConfig(cmd *cobra.Command) error {
	if err := loadConfigFile(cmd); err != nil {
		return err
	}
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}
	b, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("unable to render config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
