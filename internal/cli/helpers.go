package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/Fuabioo/hhdt/internal/config"
	"github.com/Fuabioo/hhdt/internal/errors"
	"github.com/Fuabioo/hhdt/internal/logging"
)

// outputJSON marshals and prints JSON to stdout.
func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// isTerminal checks if the given file descriptor is a TTY.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// readInput returns args[0] when present, otherwise all of stdin. An
// interactive stdin is refused so the command does not hang waiting.
func readInput(args []string, what string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}
	if isTerminal(os.Stdin) {
		return "", errors.InvalidArgument("no %s provided; pass it as an argument or pipe it to stdin", what)
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.InputRead("stdin", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// getExitCode maps error codes to CLI exit codes.
func getExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch errors.Code(err) {
	case errors.CodeInvalidArgument:
		return 2 // Invalid input or package
	case errors.CodeRemoteError:
		return 3 // Decoded package carries an error
	case errors.CodeConfigInvalid:
		return 4 // Bad configuration
	default:
		return 1 // General error
	}
}

// loadConfig loads the configuration from the config directory.
func loadConfig() (*config.Config, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// newLogger builds the stderr logger for a command. --verbose forces debug.
func newLogger(cfg *config.Config, component string) logging.Logger {
	opts := logging.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Component: component,
	}
	if flagVerbose {
		opts.Level = "debug"
	}

	logger, err := logging.New(os.Stderr, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using default logger\n", err)
		return logging.NewDefaultLogger()
	}
	return logger
}

// setupStyling turns off pterm colors when stdout is not a terminal.
func setupStyling() {
	if !isTerminal(os.Stdout) {
		pterm.DisableColor()
	}
}

// printError prints an error to stderr with appropriate formatting.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
