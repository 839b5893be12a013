// Package cli parses the command line of the postcut tool.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
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

// Config is the parsed command line.
type Config struct {
	JobPath      string
	MachinePath  string // explicit machine file; overrides the job's machine name
	MachinesDir  string // machine library; empty uses the app config
	ConfigPath   string // app config file
	Post         string // post processor override
	OutDir       string
	SetupSheet   string
	ToolTable    string
	DXF          string
	ToolLibrary  string // CSV or XLSX tool library applied to the job's tools
	Bundle       string // write the job and its machine as one file
	Holes        string // DXF whose circles become a drilling operation
	HoleDepth    float64
	HoleRetract  float64
	HoleTool     int    // tool number for the hole operation; 0 uses the first job tool
	GCodeOp      string // existing G-code appended as an operation
	ListPosts    bool
	ListMachines bool
	LogFormat    string
	LogLevel     string
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer, defaultConfigPath string) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("postcut", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
PostCut - turns CAM jobs into controller-specific G-code.

Usage:
  postcut [options] JOB_PATH

Arguments:
  JOB_PATH
    Path to a job file (.json).

Options:
`)
		flagSet.PrintDefaults()
	}

	jobFlag := flagSet.String("job", "", "Path to the job file.")
	machineFlag := flagSet.String("machine", "", "Machine file (.json, .yaml, .toml). Overrides the job's machine.")
	machinesDirFlag := flagSet.String("machines-dir", "", "Directory of machine files looked up by name.")
	configFlag := flagSet.String("config", defaultConfigPath, "Application config file.")
	postFlag := flagSet.String("post", "", "Post processor name. Overrides the job and machine setting.")
	outFlag := flagSet.String("out", ".", "Directory the G-code files are written to.")
	setupFlag := flagSet.String("setup-sheet", "", "Write a PDF setup sheet to this path.")
	toolTableFlag := flagSet.String("tool-table", "", "Write an XLSX tool table to this path.")
	dxfFlag := flagSet.String("dxf", "", "Write a DXF toolpath preview of the first output to this path.")
	toolLibFlag := flagSet.String("tool-library", "", "CSV or XLSX tool library. Updates the job's tools by tool number.")
	bundleFlag := flagSet.String("bundle", "", "Write the job together with its machine configuration to this path.")
	holesFlag := flagSet.String("holes", "", "DXF file whose circles are appended as a drilling operation.")
	holeDepthFlag := flagSet.Float64("hole-depth", -3, "Z of the hole bottom for -holes, in mm.")
	holeRetractFlag := flagSet.Float64("hole-retract", 2, "R plane for -holes, in mm.")
	holeToolFlag := flagSet.Int("hole-tool", 0, "Tool number for -holes. 0 uses the job's first tool.")
	gcodeOpFlag := flagSet.String("gcode-op", "", "G-code file appended to the job as an operation.")
	listFlag := flagSet.Bool("list-posts", false, "List the available post processors and exit.")
	listMachinesFlag := flagSet.Bool("list-machines", false, "List the machines of the machine library and exit.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	cfg := &Config{
		JobPath:      *jobFlag,
		MachinePath:  *machineFlag,
		MachinesDir:  *machinesDirFlag,
		ConfigPath:   *configFlag,
		Post:         *postFlag,
		OutDir:       *outFlag,
		SetupSheet:   *setupFlag,
		ToolTable:    *toolTableFlag,
		DXF:          *dxfFlag,
		ToolLibrary:  *toolLibFlag,
		Bundle:       *bundleFlag,
		Holes:        *holesFlag,
		HoleDepth:    *holeDepthFlag,
		HoleRetract:  *holeRetractFlag,
		HoleTool:     *holeToolFlag,
		GCodeOp:      *gcodeOpFlag,
		ListPosts:    *listFlag,
		ListMachines: *listMachinesFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	}
	if cfg.JobPath == "" && flagSet.NArg() > 0 {
		cfg.JobPath = flagSet.Arg(0)
	}
	if cfg.JobPath == "" && !cfg.ListPosts && !cfg.ListMachines {
		flagSet.Usage()
		return nil, true, nil
	}
	return cfg, false, nil
}

// NewLogger builds the logger selected by the config.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
