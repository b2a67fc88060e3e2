// Command wifiprep turns WiFi scan captures into a normalized, labelled
// training set and exports the normalization parameters for the firmware.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/banshee-data/wifiprep/internal/config"
	"github.com/banshee-data/wifiprep/internal/monitoring"
	"github.com/banshee-data/wifiprep/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	monitoring.SetLogger(log.New(stderr, "", log.LstdFlags).Printf)

	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	command, rest := splitCommand(args)
	switch command {
	case "prepare":
		return runPrepare(rest, stdout, stderr)
	case "export-header":
		return runExportHeader(rest, stdout, stderr)
	case "analyze":
		return runAnalyze(rest, stdout, stderr)
	case "chart":
		return runChart(rest, stdout, stderr)
	case "record":
		return runRecord(rest, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "wifiprep version %s\n", version.String())
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	case "":
		printUsage(stderr)
		return 2
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 2
	}
}

// boolFlags take no value, so the word after them is not consumed.
var boolFlags = map[string]bool{"v": true, "h": true, "help": true}

// splitCommand finds the command word in args, allowing common flags to come
// before it. The remaining args keep their order. Help flags with no command
// word count as the help command.
func splitCommand(args []string) (string, []string) {
	help := ""
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			rest := make([]string, 0, len(args)-1)
			rest = append(rest, args[:i]...)
			return a, append(rest, args[i+1:]...)
		}
		name := strings.TrimLeft(a, "-")
		if name == "h" || name == "help" {
			help = a
		}
		if !strings.Contains(name, "=") && !boolFlags[name] {
			i++
		}
	}
	if help != "" {
		return help, nil
	}
	return "", args
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `wifiprep - training data preparation for the WiFi threat classifier

Usage: wifiprep <command> [options]

Common flags may also come before the command word.

Commands:
  prepare        Normalize a capture and write a labelled sample tree
  export-header  Render normalization.json as a C header for the firmware
  analyze        Print label distribution and feature statistics
  chart          Write an HTML label chart and feature histograms
  record         Record capture lines from the device serial console
  version        Show wifiprep version
  help           Show this help message

Common Flags:
  --input, -i <path>    Input capture file (serial device for record)
  --output, -o <path>   Output directory or file
  --label, -l <label>   Default label for unlabeled entries (default: normal)
  --format <fmt>        Capture format: auto, lines or pcap (default: auto)
  --config <file>       JSON config file with defaults
  -v                    Verbose diagnostics on stderr

Examples:
  wifiprep prepare -i scan.jsonl -o dataset
  wifiprep prepare -i beacons.pcap -o dataset --catalog runs.db
  wifiprep export-header -i dataset/normalization.json -o ml_normalization.h
  wifiprep analyze -i scan.jsonl
  wifiprep record -i /dev/ttyACM0 -o scan.jsonl`)
}

// commonFlags are the options shared by every data command.
type commonFlags struct {
	input      string
	output     string
	label      string
	format     string
	configPath string
	verbose    bool

	fs  *flag.FlagSet
	cfg *config.PrepConfig
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	c := &commonFlags{fs: fs}
	fs.StringVar(&c.input, "input", "", "Input data file")
	fs.StringVar(&c.input, "i", "", "Input data file (shorthand)")
	fs.StringVar(&c.output, "output", "", "Output directory or file")
	fs.StringVar(&c.output, "o", "", "Output directory or file (shorthand)")
	fs.StringVar(&c.label, "label", "normal", "Default label for unlabeled data")
	fs.StringVar(&c.label, "l", "normal", "Default label for unlabeled data (shorthand)")
	fs.StringVar(&c.format, "format", "", "Capture format: auto, lines or pcap")
	fs.StringVar(&c.configPath, "config", "", "JSON config file")
	fs.BoolVar(&c.verbose, "v", false, "Verbose diagnostics")
	return fs, c
}

// parse parses args. It returns an exit code and false when the command
// should stop.
func (c *commonFlags) parse(args []string) (int, bool) {
	if err := c.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	monitoring.SetVerbose(c.verbose)
	return 0, true
}

// loadConfig reads the config file, if any, and fills options the command
// line left unset.
func (c *commonFlags) loadConfig(stderr io.Writer) (int, bool) {
	c.cfg = config.Empty()
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1, false
		}
		c.cfg = cfg
	}

	set := make(map[string]bool)
	c.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["label"] && !set["l"] {
		c.label = c.cfg.GetDefaultLabel()
	}
	if c.format == "" {
		c.format = c.cfg.GetInputFormat()
	}
	if err := config.ValidateFormat(c.format); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1, false
	}
	return 0, true
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
