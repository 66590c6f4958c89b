package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Fuabioo/hhdt/internal/config"
	"github.com/Fuabioo/hhdt/internal/envelope"
	"github.com/Fuabioo/hhdt/internal/errors"
	"github.com/Fuabioo/hhdt/internal/logging"
	"github.com/Fuabioo/hhdt/internal/source"
)

var decodeFlagStack bool

var decodeCmd = &cobra.Command{
	Use:   "decode [message]",
	Short: "Parse a package and print its value or error",
	Long: `Parses a package from the argument or stdin.

A success package prints its payload. An error package prints the
reconstructed error and exits with code 3.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeFlagStack, "stack", false, "Print the stack trace of an error package")
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "decode")
	setupStyling()

	input, err := readInput(args, "message")
	if err != nil {
		return err
	}

	pkg, err := envelope.Parse(input)
	if err != nil {
		logger.Debug("rejected message", logging.Err(err))
		return err
	}
	logger.Debug("decoded package", logging.String("type", string(pkg.Type())))

	if pkg.Type() == envelope.TypeSuccess {
		if flagJSON {
			return outputJSON(decodedView(pkg))
		}
		return printValue(os.Stdout, cfg, pkg.Value())
	}

	remote := pkg.Err()
	if flagJSON {
		if err := outputJSON(decodedView(pkg)); err != nil {
			return err
		}
	} else if !flagQuiet {
		printRemoteError(os.Stdout, remote, decodeFlagStack)
	}
	return errors.RemoteError(remote)
}

// decodedView is the --json shape of a decoded package.
func decodedView(pkg *envelope.Package) map[string]any {
	view := map[string]any{
		"type": string(pkg.Type()),
	}
	if id, ok := pkg.ResponseID(); ok {
		view["response_id"] = id
	}
	if d, ok := pkg.Descriptor(); ok {
		view["error"] = d
	} else {
		view["value"] = pkg.Value()
	}
	return view
}

// printValue prints v as JSON using the configured indentation.
func printValue(w io.Writer, cfg *config.Config, v any) error {
	var (
		data []byte
		err  error
	)
	if indent := cfg.IndentString(); indent != "" {
		data, err = json.MarshalIndent(v, "", indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printRemoteError renders a reconstructed error.
func printRemoteError(w io.Writer, err error, withStack bool) {
	var rerr *source.Error
	if !stderrors.As(err, &rerr) {
		fmt.Fprintln(w, err)
		return
	}

	label := pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(rerr.Name())
	family := pterm.NewStyle(pterm.FgLightMagenta).Sprint("[" + string(rerr.Source()) + "]")
	fmt.Fprintf(w, "%s %s\n", family, label)
	fmt.Fprintf(w, "  %s\n", rerr.Message())

	if withStack && rerr.Stack() != "" {
		dim := pterm.NewStyle(pterm.FgGray)
		for _, line := range strings.Split(rerr.Stack(), "\n") {
			fmt.Fprintln(w, dim.Sprint("  "+line))
		}
	}
}
