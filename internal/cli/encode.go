package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Fuabioo/hhdt/internal/envelope"
	"github.com/Fuabioo/hhdt/internal/errors"
	"github.com/Fuabioo/hhdt/internal/logging"
)

var (
	encodeFlagFrom       string
	encodeFlagResponseID string
	encodeFlagNewID      bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode [value]",
	Short: "Wrap a value in a success package",
	Long: `Reads a JSON value (or YAML with --from yaml) from the argument or stdin
and prints it wrapped in a success package.

Use --response-id to set the correlation id, or --new-id to generate one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVar(&encodeFlagFrom, "from", "json", "Input format: json or yaml")
	encodeCmd.Flags().StringVar(&encodeFlagResponseID, "response-id", "", "Correlation id to attach")
	encodeCmd.Flags().BoolVar(&encodeFlagNewID, "new-id", false, "Generate a random correlation id")
	encodeCmd.MarkFlagsMutuallyExclusive("response-id", "new-id")
}

func runEncode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "encode")

	input, err := readInput(args, "value")
	if err != nil {
		return err
	}

	value, err := decodeValue(input, encodeFlagFrom)
	if err != nil {
		return err
	}

	var opts []envelope.Option
	switch {
	case encodeFlagResponseID != "":
		opts = append(opts, envelope.WithResponseID(encodeFlagResponseID))
	case encodeFlagNewID:
		opts = append(opts, envelope.WithResponseID(uuid.NewString()))
	}

	pkg, err := envelope.New(value, opts...)
	if err != nil {
		return err
	}

	wire, err := json.Marshal(pkg)
	if err != nil {
		return fmt.Errorf("failed to encode package: %w", err)
	}
	logger.Debug("encoded package", logging.String("type", string(pkg.Type())), logging.Int("bytes", len(wire)))

	fmt.Println(string(wire))
	return nil
}

// decodeValue parses input in the given format into plain JSON values.
func decodeValue(input, format string) (any, error) {
	var value any
	switch format {
	case "json", "":
		if err := json.Unmarshal([]byte(input), &value); err != nil {
			return nil, errors.InvalidArgument("value is not valid JSON: %v", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal([]byte(input), &value); err != nil {
			return nil, errors.InvalidArgument("value is not valid YAML: %v", err)
		}
		normalized, err := normalizeYAML(value)
		if err != nil {
			return nil, err
		}
		value = normalized
	default:
		return nil, errors.InvalidArgument("unknown input format %q (want json or yaml)", format)
	}
	return value, nil
}

// normalizeYAML converts YAML-only shapes into values encoding/json can
// represent: map keys must be strings.
func normalizeYAML(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			key, ok := k.(string)
			if !ok {
				return nil, errors.InvalidArgument("YAML map key %v is not a string", k)
			}
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		for i, val := range t {
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return v, nil
	}
}
