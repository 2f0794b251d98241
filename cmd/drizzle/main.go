package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/drizzle/internal/config"
	"github.com/vango-dev/drizzle/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┳┓  •     ┓
  ┃┃┏┓┓┓┏┓┏┃┏┓
  ┻┛┛ ┗┗┗┗┗┗┗
`

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	dir       string
	logLevel  string
	logFormat string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "drizzle",
		Short: "Server-rendered pages with declarative data-* directives",
		Long: `drizzle renders components to HTML on the server and binds
declarative data-* directives over the markup on the client.

  • String rendering of vnode trees
  • data-show, data-text, data-class, data-model and event directives
  • Island hydration from per-page JSON payloads
  • Headless hydration for verifying pages from the command line`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.dir, "config", "C", ".", "Directory to search for drizzle.json or drizzle.yaml")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: text or json (default from config)")

	rootCmd.AddCommand(
		serveCmd(flags),
		renderCmd(flags),
		hydrateCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// load reads the project configuration, applies the logging flags and
// validates the result.
func (f *globalFlags) load() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(f.dir)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// usageError reports invalid command usage.
func usageError(format string, args ...any) error {
	return errors.New("E140").WithDetail(fmt.Sprintf(format, args...))
}

// printBanner prints the drizzle banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
