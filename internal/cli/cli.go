package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/cicrender/internal/app"
	"github.com/spf13/pflag"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Only flags given explicitly override the environment and defaults.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := pflag.NewFlagSet("cicrender", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	flagSet.Usage = func() {
		fmt.Fprint(output, `
cicrender - Renders cohort identification configurations as indented text reports.

Usage:
  cicrender -s SERVER -d DATABASE -o OUT_DIR [options]
  cicrender --snapshot PATH -o OUT_DIR [options]

Every option can also be set with a CICRENDER_<NAME> environment variable,
for example CICRENDER_LOG_LEVEL=debug.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := app.DefaultConfig()
	flagSet.StringP("server", "s", "", "Catalogue database server.")
	flagSet.StringP("database", "d", "", "Catalogue database name (sqlite: database file).")
	flagSet.StringP("out", "o", "", "Directory to write reports into.")
	flagSet.String("driver", defaults.Driver, "Catalogue driver. Options: 'sqlserver' or 'sqlite'.")
	flagSet.String("dsn", "", "Full catalogue connection string, overrides server and database.")
	flagSet.String("user", "", "Catalogue user. Empty uses integrated authentication.")
	flagSet.String("password", "", "Catalogue password.")
	flagSet.String("snapshot", "", "HCL snapshot file or directory to read instead of the catalogue.")
	flagSet.Int("workers", defaults.Workers, "Number of reports rendered and written concurrently.")
	flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %v", flagSet.Args())}
	}

	if flagSet.NFlag() == 0 && os.Getenv(app.EnvPrefix+"OUT") == "" {
		slog.Debug("Nothing configured, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	overrides := make(map[string]any)
	flagSet.Visit(func(f *pflag.Flag) {
		overrides[strings.ReplaceAll(f.Name, "-", "_")] = f.Value.String()
	})

	config, err := app.LoadConfig(overrides)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", *config)
	return config, false, nil
}
