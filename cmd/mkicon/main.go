package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/Mavwarf/mkicon/internal/compiler"
	"github.com/Mavwarf/mkicon/internal/config"
	"github.com/Mavwarf/mkicon/internal/eventlog"
	"github.com/Mavwarf/mkicon/internal/iconset"
	"github.com/Mavwarf/mkicon/internal/paths"
	"github.com/Mavwarf/mkicon/internal/runner"
	"github.com/Mavwarf/mkicon/internal/tmpl"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// cliFlags holds the parsed command-line options. Empty strings and
// minSource < 0 mean "not given".
type cliFlags struct {
	configPath string
	source     string
	output     string
	compiler   string
	filter     string
	minSource  int
	keep       bool
	verbose    bool
}

func main() {
	f, rest, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'mkicon help' for usage.\n")
		os.Exit(1)
	}

	if len(rest) > 0 {
		switch rest[0] {
		case "help", "-h", "--help":
			printUsage()
		case "version", "-V", "--version":
			printVersion()
		case "history":
			historyCmd(rest[1:], f.configPath)
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", rest[0])
			fmt.Fprintf(os.Stderr, "Run 'mkicon help' for usage.\n")
			os.Exit(1)
		}
		return
	}

	os.Exit(build(f))
}

// parseArgs pulls the known options out of args and returns the rest.
func parseArgs(args []string) (cliFlags, []string, error) {
	f := cliFlags{minSource: -1}
	var rest []string

	value := func(i int, name, what string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires %s", name, what)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		var err error
		switch a := args[i]; a {
		case "--config", "-c":
			f.configPath, err = value(i, a, "a file path")
			i++
		case "--source", "-s":
			f.source, err = value(i, a, "a file path")
			i++
		case "--output", "-o":
			f.output, err = value(i, a, "a file path")
			i++
		case "--compiler":
			f.compiler, err = value(i, a, "a name")
			i++
		case "--filter":
			f.filter, err = value(i, a, "a name")
			i++
		case "--min-source":
			var v string
			if v, err = value(i, a, "a pixel count"); err == nil {
				n, convErr := strconv.Atoi(v)
				if convErr != nil || n < 0 {
					err = fmt.Errorf("--min-source must be a non-negative integer")
				}
				f.minSource = n
			}
			i++
		case "--keep":
			f.keep = true
		case "--verbose":
			f.verbose = true
		default:
			rest = append(rest, a)
		}
		if err != nil {
			return f, nil, err
		}
	}
	return f, rest, nil
}

// buildOptions merges flags over cfg. Flag paths are taken relative to the
// working directory, config paths relative to the config file.
func buildOptions(f cliFlags, cfg config.Config) (runner.Options, error) {
	if f.compiler != "" {
		cfg.Compiler = f.compiler
	}
	if f.filter != "" {
		cfg.Filter = f.filter
	}
	if f.minSource >= 0 {
		cfg.MinSource = f.minSource
	}
	if f.keep {
		cfg.KeepIconset = true
	}
	if err := cfg.Validate(); err != nil {
		return runner.Options{}, err
	}

	source := f.source
	if source == "" {
		source = cfg.Resolve(cfg.Source)
	}
	output := f.output
	if output == "" {
		output = cfg.Resolve(cfg.Output)
	}
	output = tmpl.Expand(output, tmpl.Vars{Name: tmpl.BaseName(source)})

	filter, err := iconset.ParseFilter(cfg.Filter)
	if err != nil {
		return runner.Options{}, err
	}
	comp, err := compiler.ByName(cfg.Compiler, cfg.Command)
	if err != nil {
		return runner.Options{}, err
	}

	return runner.Options{
		Source:      source,
		Output:      output,
		IconsetDir:  paths.StagingDir(output, cfg.IconsetName),
		Edge:        cfg.Edge,
		Filter:      filter,
		Compiler:    comp,
		MinSource:   cfg.MinSource,
		KeepIconset: cfg.KeepIconset,
	}, nil
}

// build runs one icon build and returns the process exit code.
func build(f cliFlags) int {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	opts, err := buildOptions(f, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	opts.Progress = os.Stdout
	opts.Logger = newLogger(f.verbose)

	fmt.Printf("Building %s from %s\n", opts.Output, opts.Source)
	res, err := runner.Execute(opts)
	recordRun(cfg.History, runEntry(opts, res, err))

	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v\n", marker(false), err)
		if errors.Is(err, runner.ErrCompile) && res.IconsetDir != "" {
			fmt.Fprintf(os.Stderr, "Iconset kept at %s\n", res.IconsetDir)
		}
		return 1
	}
	fmt.Printf("%sCreated %s (%s)\n", marker(true), res.Output, formatDuration(res.Duration))
	if res.IconsetDir != "" {
		fmt.Printf("Iconset kept at %s\n", res.IconsetDir)
	}
	return 0
}

func runEntry(opts runner.Options, res runner.Result, err error) eventlog.Entry {
	e := eventlog.Entry{
		Time:     time.Now(),
		Outcome:  eventlog.OutcomeOK,
		Source:   opts.Source,
		Output:   opts.Output,
		Duration: res.Duration,
	}
	if opts.Compiler != nil {
		e.Compiler = opts.Compiler.Name()
	}
	if opts.Filter != nil {
		e.Filter = opts.Filter.Name()
	}
	if err != nil {
		e.Outcome = eventlog.OutcomeFailed
		e.Error = err.Error()
	}
	return e
}

// formatDuration returns a compact duration string (e.g. "850ms", "2s").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}

func printVersion() {
	fmt.Printf("mkicon %s (%s) %s/%s\n", version, buildDate, runtime.GOOS, runtime.GOARCH)
}

func printUsage() {
	fmt.Printf("mkicon %s - Build a macOS .icns app icon from a PNG\n", version)
	fmt.Println(`
Usage:
  mkicon [options]
  mkicon history [--days N]
  mkicon history clean <days>
  mkicon history clear

Options:
  --source, -s <path>    Source image (default: icon/app_icon.png)
  --output, -o <path>    Compiled icon path (default: AppIcon.icns); {name} is the source name
  --config, -c <path>    Path to mkicon-config.json
  --compiler <name>      auto, iconutil, native or command (default: auto)
  --filter <name>        lanczos or lanczos3 (default: lanczos)
  --min-source <px>      Reject sources whose shorter side is below px
  --keep                 Keep the .iconset directory after a successful build
  --verbose              Debug logging to stderr

Commands:
  history                Show recorded builds (needs "history" in config)
  version, -V            Show version and build date
  help, -h, --help       Show this help message

Config resolution:
  1. --config <path>                     (explicit)
  2. mkicon-config.json next to binary   (portable)
  3. ~/.config/mkicon/mkicon-config.json (user default)

Relative paths in a config file are resolved against its directory.

Examples:
  mkicon                           Build AppIcon.icns from icon/app_icon.png
  mkicon -s logo.png -o {name}.icns
  mkicon --compiler native         Build without iconutil (any OS)`)
}
