package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Fuabioo/hhdt/internal/envelope"
	"github.com/Fuabioo/hhdt/internal/errors"
	"github.com/Fuabioo/hhdt/internal/logging"
)

var (
	encodeErrorFlagSource     string
	encodeErrorFlagName       string
	encodeErrorFlagMessage    string
	encodeErrorFlagStackFile  string
	encodeErrorFlagResponseID string
)

var encodeErrorCmd = &cobra.Command{
	Use:   "encode-error --name <name> --message <message>",
	Short: "Build an error package",
	Long: `Builds an error package from an error name and message.

The source defaults to the configured default_source. --stack-file reads a
stack trace (one frame per line) from a file, or from stdin with "-".`,
	Args: cobra.NoArgs,
	RunE: runEncodeError,
}

func init() {
	encodeErrorCmd.Flags().StringVar(&encodeErrorFlagSource, "source", "", "Error family: HoloError, UserError or AppError")
	encodeErrorCmd.Flags().StringVar(&encodeErrorFlagName, "name", "", "Error kind name")
	encodeErrorCmd.Flags().StringVar(&encodeErrorFlagMessage, "message", "", "Error message")
	encodeErrorCmd.Flags().StringVar(&encodeErrorFlagStackFile, "stack-file", "", "File holding the stack trace (\"-\" for stdin)")
	encodeErrorCmd.Flags().StringVar(&encodeErrorFlagResponseID, "response-id", "", "Correlation id to attach")
	_ = encodeErrorCmd.MarkFlagRequired("name")
	_ = encodeErrorCmd.MarkFlagRequired("message")
}

func runEncodeError(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "encode-error")

	src := encodeErrorFlagSource
	if src == "" {
		src = string(cfg.DefaultSource)
	}

	caught := map[string]any{
		"name":    encodeErrorFlagName,
		"message": encodeErrorFlagMessage,
	}
	if encodeErrorFlagStackFile != "" {
		stack, err := readStackFile(encodeErrorFlagStackFile)
		if err != nil {
			return err
		}
		if stack != "" {
			caught["stack"] = stack
		}
	}

	pkg, err := envelope.CreateFromError(src, caught)
	if err != nil {
		return err
	}

	if encodeErrorFlagResponseID != "" {
		d, _ := pkg.Descriptor()
		pkg, err = envelope.New(d, envelope.WithType(envelope.TypeError), envelope.WithResponseID(encodeErrorFlagResponseID))
		if err != nil {
			return err
		}
	}

	logger.Debug("encoded error package", logging.String("source", src), logging.String("name", encodeErrorFlagName))

	fmt.Println(pkg.String())
	return nil
}

func readStackFile(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.InputRead("stack file", err)
	}
	return strings.TrimRight(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}
