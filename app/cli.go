package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"nerd-search/config"
	"nerd-search/search"
)

var version = "0.3"

// Process exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitUsage       = 2
	exitInterrupted = 130
)

// cliFlags holds every command line option after defaults are merged
type cliFlags struct {
	caseSensitive bool
	wholeWord     bool
	regex         bool
	fuzzy         bool
	threshold     int

	recursive    bool
	exclude      []string
	workers      int
	contextLines int

	quiet           bool
	filterNoResults bool
	output          string
	htmlPath        string
	jsonPath        string
	baseURL         string
	pdfEngine       string
	interactive     bool
	noColor         bool

	configPath   string
	logLevel     string
	logFormat    string
	defaultsFrom string
}

// usageError marks problems with the command line itself
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &cliFlags{}

	cmd := &cobra.Command{
		Use:     "nerd-search <path> <term> [term...]",
		Short:   "Search documents for words and phrases",
		Version: version,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 2 {
				return &usageError{fmt.Errorf("expected a path and at least one search term, got %d argument(s)", len(args))}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.applyDefaults(cmd.Flags()); err != nil {
				return err
			}
			return runSearch(cmd.Context(), f, args[0], args[1:], stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("nerd-search v{{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		showUsage(c.OutOrStdout(), c.Flags())
	})

	fl := cmd.Flags()
	fl.SortFlags = false

	fl.BoolVarP(&f.caseSensitive, "case-sensitive", "c", false, "match letter case exactly")
	fl.BoolVarP(&f.wholeWord, "whole-word", "w", true, "match whole words only (--whole-word=false for substrings)")
	fl.BoolVarP(&f.regex, "regex", "r", false, "treat terms as regular expressions")
	fl.BoolVarP(&f.fuzzy, "fuzzy", "f", false, "approximate matching by edit distance")
	fl.IntVar(&f.threshold, "threshold", search.DefaultFuzzyThreshold, "minimum fuzzy similarity, 0-100")

	fl.BoolVarP(&f.recursive, "recursive", "R", false, "descend into subdirectories")
	fl.StringArrayVarP(&f.exclude, "exclude", "x", nil, "skip paths matching a glob, or a regex with a re: prefix (repeatable)")
	fl.IntVarP(&f.workers, "workers", "j", 0, "files searched in parallel (0 = one per CPU)")
	fl.IntVarP(&f.contextLines, "context", "C", search.DefaultContextLines, "lines of context around each match")

	fl.BoolVarP(&f.quiet, "quiet", "q", false, "print only the paths of matching files")
	fl.BoolVar(&f.filterNoResults, "filter-no-results", false, "hide files without matches")
	fl.StringVarP(&f.output, "output", "o", "", "also write a plain text report to this file")
	fl.StringVar(&f.htmlPath, "html", "", "also write an HTML report to this file")
	fl.StringVar(&f.jsonPath, "json", "", "also write a JSON report to this file")
	fl.StringVar(&f.baseURL, "base-url", "", "link files in the HTML report to this URL prefix")
	fl.StringVar(&f.pdfEngine, "pdf-engine", search.PDFEngineLedongthuc, "PDF text extractor: ledongthuc or pdfcpu")
	fl.BoolVarP(&f.interactive, "interactive", "i", false, "browse results in a full screen viewer")
	fl.BoolVar(&f.noColor, "no-color", false, "disable coloured output")

	fl.StringVar(&f.configPath, "config", "", "defaults file (default "+config.DefaultPath()+")")
	fl.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFormat, "log-format", "text", "log format: text or json")

	return cmd
}

// applyDefaults fills options the user did not set from the defaults file
func (f *cliFlags) applyDefaults(fs *pflag.FlagSet) error {
	path := f.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	d, err := config.LoadDefaults(path)
	if err != nil {
		return err
	}
	f.defaultsFrom = d.Path()

	setBool := func(name string, dst *bool, v *bool) {
		if v != nil && !fs.Changed(name) {
			*dst = *v
		}
	}
	setInt := func(name string, dst *int, v *int) {
		if v != nil && !fs.Changed(name) {
			*dst = *v
		}
	}
	setString := func(name string, dst *string, v string) {
		if v != "" && !fs.Changed(name) {
			*dst = v
		}
	}

	setBool("case-sensitive", &f.caseSensitive, d.CaseSensitive)
	setBool("whole-word", &f.wholeWord, d.WholeWord)
	setBool("regex", &f.regex, d.Regex)
	setBool("fuzzy", &f.fuzzy, d.Fuzzy)
	setInt("threshold", &f.threshold, d.FuzzyThreshold)
	setBool("recursive", &f.recursive, d.Recursive)
	setInt("workers", &f.workers, d.Workers)
	setInt("context", &f.contextLines, d.ContextLines)
	setBool("quiet", &f.quiet, d.Quiet)
	setBool("filter-no-results", &f.filterNoResults, d.FilterNoResults)
	setString("base-url", &f.baseURL, d.BaseURL)
	setString("pdf-engine", &f.pdfEngine, d.PDFEngine)
	setString("log-level", &f.logLevel, d.LogLevel)
	setString("log-format", &f.logFormat, d.LogFormat)
	if len(d.Exclude) > 0 && !fs.Changed("exclude") {
		f.exclude = append([]string(nil), d.Exclude...)
	}
	return nil
}

func (f *cliFlags) searchOptions() search.Options {
	return search.Options{
		CaseSensitive:  f.caseSensitive,
		WholeWord:      f.wholeWord,
		Regex:          f.regex,
		Fuzzy:          f.fuzzy,
		FuzzyThreshold: f.threshold,
		Recursive:      f.recursive,
		Exclude:        f.exclude,
		Workers:        f.workers,
		ContextLines:   f.contextLines,
		PDFEngine:      f.pdfEngine,
	}
}

// showUsage (styled)
func showUsage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, logo())
	fmt.Fprintln(w)

	fmt.Fprintln(w, subHeaderStyle.Render("USAGE"))
	fmt.Fprintln(w, infoStyle.Render(wrapTextWithIndent("  nerd-search ", "[flags] <path> <term> [term...]", 100)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, subHeaderStyle.Render("FLAGS"))
	fmt.Fprint(w, infoStyle.Render(strings.TrimRight(flags.FlagUsagesWrapped(100), "\n")))
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	fmt.Fprintln(w, subHeaderStyle.Render("FILE TYPES"))
	fmt.Fprintln(w, infoStyle.Render(wrapTextWithIndent("  ", config.GetFileTypeDescription(), 100)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, subHeaderStyle.Render("EXAMPLES"))
	fmt.Fprintln(w, infoStyle.Render("  nerd-search ./contracts payment agreement"))
	fmt.Fprintln(w, infoStyle.Render("  nerd-search -R -x '*.log' --html report.html ~/docs invoice"))
	fmt.Fprintln(w, infoStyle.Render("  nerd-search -r 'INV-[0-9]{4}' -C 2 ./scans"))
	fmt.Fprintln(w, infoStyle.Render("  nerd-search -f --threshold 75 ./mail recieve"))
	fmt.Fprintln(w)
}

// logo renders the block-letter banner with the version
func logo() string {
	top := " █▄ █ █▀▀ █▀█ █▀▄"
	bottom := fmt.Sprintf(" █ ▀█ ██▄ █▀▄ █▄▀  search v%s", version)
	if len(top) < len(bottom) {
		top += strings.Repeat(" ", len(bottom)-len(top))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Render(top + "\n" + bottom)
}

// execute runs the command with args and maps the outcome to an exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ue *usageError
	switch {
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		fmt.Fprintln(stderr, warningStyle.Render("Interrupted"))
		return exitInterrupted
	case errors.As(err, &ue):
		fmt.Fprintf(stderr, "%s %v\n", errorStyle.Render("Error:"), err)
		fmt.Fprintln(stderr, "Run 'nerd-search --help' for usage.")
		return exitUsage
	default:
		fmt.Fprintf(stderr, "%s %v\n", errorStyle.Render("Error:"), err)
		return exitError
	}
}

// Run parses CLI arguments and runs the search. Returns a process exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
