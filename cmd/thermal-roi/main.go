// Command thermal-roi inspects raw float32 thermal frames and reports
// statistics for rectangular regions of interest.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/thermal-roi/internal/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Fatalf("thermal-roi: %v", err)
	}
}

var errUsage = errors.New("usage")

func run(args []string, stdout io.Writer) error {
	if len(args) < 1 {
		printUsage(os.Stderr)
		return errUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "info":
		return handleInfo(rest, stdout)
	case "analyze":
		return handleAnalyze(rest, stdout)
	case "serve":
		return handleServe(rest, stdout)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage(os.Stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `thermal-roi - region-of-interest statistics for raw thermal frames

Usage: thermal-roi <command> [options] <frame.raw>

Commands:
  info       Print whole-image valid range and display scaling
  analyze    Compute ROI statistics for --rect and optionally render them
  serve      Serve a drag-to-select web page for the frame
  version    Show thermal-roi version
  help       Show this help message

Common Flags:
  --config <file>        JSON or YAML config (default: built-in defaults)
  --env <file>           dotenv file with THERMAL_* overrides (default: .env)
  --width, --height      Frame dimensions in pixels (default: 640x512)
  --byte-order <order>   little or big (default: little)
  --valid-min, --valid-max  Plausible reading range in °C (default: 0..120)
  --units <C|F|K>        Display units (statistics are computed in °C)
  --colormap <name>      Colour map for rendered output
  --min-span <px>        Minimum selection size on each axis (default: 5)
  --debug                Enable debug logging

Examples:
  thermal-roi info frame.raw
  thermal-roi analyze --rect 100,80,220,160 --out roi.png frame.raw
  thermal-roi analyze --rect 100,80,220,160 --json --html roi.html frame.raw
  thermal-roi serve --listen :8080 frame.raw`)
}
