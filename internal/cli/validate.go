package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Fuabioo/hhdt/internal/envelope"
	"github.com/Fuabioo/hhdt/internal/errors"
	"github.com/Fuabioo/hhdt/internal/logging"
)

var validateFlagJobs int

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check that files hold well-formed packages",
	Long: `Parses every file as a package and reports the result for each.

Files are checked concurrently. The command fails if any file is invalid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().IntVarP(&validateFlagJobs, "jobs", "j", 0, "Files checked in parallel (default: number of CPUs)")
}

// validation is the outcome for one file.
type validation struct {
	File   string `json:"file"`
	Valid  bool   `json:"valid"`
	Type   string `json:"type,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "validate")
	setupStyling()

	jobs := validateFlagJobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	results := validateFiles(cmd, args, jobs, logger)

	invalid := 0
	for _, r := range results {
		if !r.Valid {
			invalid++
		}
	}

	if flagJSON {
		if err := outputJSON(results); err != nil {
			return err
		}
	} else if !flagQuiet {
		ok := pterm.NewStyle(pterm.FgGreen).Sprint("ok  ")
		bad := pterm.NewStyle(pterm.FgRed).Sprint("FAIL")
		for _, r := range results {
			if r.Valid {
				fmt.Printf("%s %s (%s)\n", ok, r.File, r.Type)
			} else {
				fmt.Printf("%s %s: %s\n", bad, r.File, r.Reason)
			}
		}
	}

	if invalid > 0 {
		return errors.InvalidArgument("%d of %d files are not valid packages", invalid, len(results))
	}
	return nil
}

// validateFiles checks files with at most jobs in flight. Results keep the
// order of files.
func validateFiles(cmd *cobra.Command, files []string, jobs int, logger logging.Logger) []validation {
	results := make([]validation, len(files))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = validation{File: file, Reason: err.Error()}
				return nil
			}
			results[i] = validateFile(file)
			logger.Debug("validated file", logging.String("file", file), logging.Bool("valid", results[i].Valid))
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func validateFile(path string) validation {
	data, err := os.ReadFile(path)
	if err != nil {
		return validation{File: path, Reason: errors.InputRead(path, err).Error()}
	}

	pkg, err := envelope.Parse(data)
	if err != nil {
		return validation{File: path, Reason: err.Error()}
	}
	return validation{File: path, Valid: true, Type: string(pkg.Type())}
}
