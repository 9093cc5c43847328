package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"pvmkit/internal/config"
	"pvmkit/internal/pvmkit/log"
)

type configKey struct{}

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().StringP("config", "C", "", "Configuration file (default ./pvmkit.toml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.AddCommand(disCmd, asmCmd, verifyCmd, opcodesCmd, viewCmd, schemaCmd)
}

var rootCmd = &cobra.Command{
	Use:   "pvmkit",
	Short: "PVM bytecode disassembler and assembler",
	Long: `pvmkit decodes PVM bytecode into instruction listings and encodes
listings or serialized programs back into bytecode. Disassembling and
reassembling a valid program reproduces it byte for byte.`,
	Example: `
# Disassemble a program with branch labels
pvmkit dis --labels program.bin

# Assemble a listing and print the bytecode as hex
pvmkit asm --hex program.pvmasm

# Check that programs survive a round trip
pvmkit verify *.bin
  `,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := ResolveCwd(cmd)
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cwd, path)
		if err != nil {
			return err
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			cfg.Debug = true
		}

		log.Setup(cfg.Debug)
		slog.Debug("Configuration loaded", "path", cfg.Path, "cwd", cwd)

		// Piped output stays free of escape sequences
		if cfg.NoColor || !term.IsTerminal(os.Stdout.Fd()) {
			os.Setenv("PVMKIT_NO_COLOR", "1")
		}

		cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
		return nil
	},
}

// configFrom returns the configuration loaded for cmd, or the defaults.
func configFrom(cmd *cobra.Command) *config.Config {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
			return cfg
		}
	}
	return config.Default()
}

func Execute() {
	var err error
	if !term.IsTerminal(os.Stdout.Fd()) {
		// Use cobra directly when piped to bypass fang's styled output
		err = rootCmd.Execute()
	} else {
		err = fang.Execute(
			context.Background(),
			rootCmd,
			fang.WithNotifySignal(os.Interrupt),
		)
	}
	if closeErr := log.Close(); closeErr != nil {
		slog.Error("Failed to close log file", "error", closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func ResolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		err := os.Chdir(cwd)
		if err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
		return cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}
