// PostCut - CAM post-processor
//
// Reads a job (ordered operations with their toolpaths) and writes G-code
// for the selected machine and post processor.
//
// Build:
//   go build -o postcut ./cmd/postcut
//
// Usage:
//   postcut -machine mill.yaml -out build job.json
//   postcut -list-posts
//   postcut -list-machines -machines-dir machines

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/postcut/internal/cli"
	"github.com/piwi3910/postcut/internal/export"
	"github.com/piwi3910/postcut/internal/gcode"
	"github.com/piwi3910/postcut/internal/importer"
	"github.com/piwi3910/postcut/internal/machine"
	"github.com/piwi3910/postcut/internal/model"
	"github.com/piwi3910/postcut/internal/post"
	"github.com/piwi3910/postcut/internal/project"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW, logW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW, project.DefaultConfigPath())
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	logger := cli.NewLogger(cfg, logW)

	registry := post.DefaultRegistry()
	if cfg.ListPosts {
		for _, name := range registry.Names() {
			fmt.Fprintln(outW, name)
		}
		return nil
	}

	appCfg, err := project.LoadAppConfig(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}
	if cfg.ListMachines {
		names, err := project.NewLibrary(machinesDir(cfg, appCfg)).Names()
		if err != nil {
			return fmt.Errorf("failed to list machines: %w", err)
		}
		for _, name := range names {
			fmt.Fprintln(outW, name)
		}
		return nil
	}
	job, err := project.LoadJob(cfg.JobPath)
	if err != nil {
		return err
	}
	if cfg.Post != "" {
		job.PostProcessor = cfg.Post
	}
	if cfg.ToolLibrary != "" {
		if err := applyToolLibrary(job, cfg.ToolLibrary, logger); err != nil {
			return err
		}
	}

	if err := applyImports(job, cfg, logger); err != nil {
		return err
	}

	opts := post.Options{Logger: logger, MacroDir: appCfg.MacroDir}
	proc, m, err := resolve(cfg, appCfg, registry, job, opts)
	if err != nil {
		return err
	}
	logger.Info("exporting job",
		"job", job.Name,
		"post", proc.Name(),
		"machine", m.Name,
		"operations", len(job.Operations),
	)

	if cfg.Bundle != "" {
		if err := project.ExportBundle(cfg.Bundle, job, m); err != nil {
			return err
		}
		logger.Info("job bundle written", "path", cfg.Bundle)
	}

	outputs, err := proc.Export(job)
	if err != nil {
		return fmt.Errorf("export of job %q failed: %w", job.Name, err)
	}
	if err := writeOutputs(cfg.OutDir, outputs, logger); err != nil {
		return err
	}
	checkTravel(outputs, m, logger)

	summary := export.Summarize(job, proc.Name(), m.Name, string(m.Output.Units), outputs)
	if cfg.SetupSheet != "" {
		if err := export.WriteSetupSheet(cfg.SetupSheet, summary); err != nil {
			return err
		}
		logger.Info("setup sheet written", "path", cfg.SetupSheet)
	}
	if cfg.ToolTable != "" {
		if err := export.WriteToolTable(cfg.ToolTable, summary); err != nil {
			return err
		}
		logger.Info("tool table written", "path", cfg.ToolTable)
	}
	if cfg.DXF != "" {
		if code := previewCode(outputs); code == "" {
			logger.Warn("no G-code to preview", "path", cfg.DXF)
		} else {
			if err := export.WriteToolpathDXF(cfg.DXF, code); err != nil {
				return err
			}
			logger.Info("toolpath preview written", "path", cfg.DXF)
		}
	}

	appCfg.AddRecentJob(cfg.JobPath)
	if err := project.SaveAppConfig(cfg.ConfigPath, appCfg); err != nil {
		logger.Warn("failed to save app config", "error", err)
	}
	return nil
}

// resolve picks the processor. An explicit machine file wins over the
// machine named by the job.
func resolve(cfg *cli.Config, appCfg project.AppConfig, registry *post.Registry,
	job *model.Job, opts post.Options) (post.Processor, machine.Machine, error) {

	if cfg.MachinePath != "" {
		m, err := project.LoadMachine(cfg.MachinePath)
		if err != nil {
			return nil, machine.Machine{}, err
		}
		proc, err := registry.Build(post.PostProcessorName(job, m), m, opts)
		return proc, m, err
	}

	dir := machinesDir(cfg, appCfg)
	if job.PostProcessor == "" && job.Machine == "" {
		job.PostProcessor = appCfg.DefaultPostProcessor
	}
	proc, err := registry.Resolve(job, project.NewLibrary(dir), opts)
	if err != nil {
		return nil, machine.Machine{}, err
	}
	m := machine.Default()
	if mp, ok := proc.(interface{ Machine() machine.Machine }); ok {
		m = mp.Machine()
	}
	return proc, m, nil
}

// machinesDir is the machine library directory: the flag, else the app
// config.
func machinesDir(cfg *cli.Config, appCfg project.AppConfig) string {
	if cfg.MachinesDir != "" {
		return cfg.MachinesDir
	}
	return appCfg.MachinesDir
}

// applyToolLibrary copies cutting data from a tool library onto the job's
// tool controllers with the same tool number.
func applyToolLibrary(job *model.Job, path string, logger *slog.Logger) error {
	var res importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		res = importer.ImportToolsExcel(path)
	default:
		res = importer.ImportToolsCSV(path)
	}
	for _, w := range res.Warnings {
		logger.Warn("tool library", "path", path, "detail", w)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("tool library %s: %s", path, strings.Join(res.Errors, "; "))
	}

	byNumber := make(map[int]*model.ToolController, len(res.Tools))
	for _, tc := range res.Tools {
		byNumber[tc.ToolNumber] = tc
	}
	for _, tc := range job.Tools {
		lib, ok := byNumber[tc.ToolNumber]
		if !ok {
			continue
		}
		tc.ToolDiameter = lib.ToolDiameter
		tc.SpindleDir = lib.SpindleDir
		if lib.SpindleSpeed > 0 {
			tc.SpindleSpeed = lib.SpindleSpeed
		}
		if lib.HorizFeed > 0 {
			tc.HorizFeed = lib.HorizFeed
		}
		if lib.VertFeed > 0 {
			tc.VertFeed = lib.VertFeed
		}
		logger.Debug("tool updated from library", "tool", tc.ToolNumber, "label", tc.Label)
	}
	return nil
}

// applyImports appends the operations read from -holes and -gcode-op.
func applyImports(job *model.Job, cfg *cli.Config, logger *slog.Logger) error {
	if cfg.Holes != "" {
		tool := jobTool(job, cfg.HoleTool)
		if cfg.HoleTool > 0 && tool == nil {
			return fmt.Errorf("hole tool T%d is not in job %q", cfg.HoleTool, job.Name)
		}
		holes, warnings, err := importer.ImportDXFHoles(cfg.Holes)
		for _, w := range warnings {
			logger.Warn("hole import", "path", cfg.Holes, "detail", w)
		}
		if err != nil {
			return fmt.Errorf("failed to import holes from %s: %w", cfg.Holes, err)
		}
		job.AddOperation(importer.DrillOperation("Holes", tool, holes, importer.DrillParams{
			Depth:   cfg.HoleDepth,
			Retract: cfg.HoleRetract,
			SafeZ:   cfg.HoleRetract,
		}))
		logger.Info("holes imported", "path", cfg.Holes, "count", len(holes))
	}

	if cfg.GCodeOp != "" {
		f, err := os.Open(cfg.GCodeOp)
		if err != nil {
			return fmt.Errorf("failed to open G-code operation: %w", err)
		}
		defer f.Close()
		path, err := importer.ImportGCode(f)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", cfg.GCodeOp, err)
		}
		label := strings.TrimSuffix(filepath.Base(cfg.GCodeOp), filepath.Ext(cfg.GCodeOp))
		job.AddOperation(model.NewOperation(label, jobTool(job, 0), path))
		logger.Info("G-code imported", "path", cfg.GCodeOp, "commands", len(path))
	}
	return nil
}

// jobTool returns the job tool with the given number, or the first tool
// when number is 0.
func jobTool(job *model.Job, number int) *model.ToolController {
	for _, tc := range job.Tools {
		if number == 0 || tc.ToolNumber == number {
			return tc
		}
	}
	return nil
}

// previewCode joins the G-code of every non-empty section in output order.
func previewCode(outputs []post.Output) string {
	var b strings.Builder
	for _, out := range outputs {
		if out.GCode == "" {
			continue
		}
		b.WriteString(out.GCode)
		if !strings.HasSuffix(out.GCode, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writeOutputs(dir string, outputs []post.Output, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, out := range outputs {
		if out.GCode == "" {
			logger.Warn("section produced no output", "section", out.Name)
			continue
		}
		path := filepath.Join(dir, out.FileName)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(out.GCode), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("gcode written", "section", out.Name, "path", path)
	}
	return nil
}

// checkTravel logs every move outside the machine travel. Travel is given in
// millimetres and scaled to the output units.
func checkTravel(outputs []post.Output, m machine.Machine, logger *slog.Logger) {
	travel := m.Travel
	if m.Output.Units == machine.Imperial {
		const mmPerInch = 25.4
		travel.XMin, travel.XMax = travel.XMin/mmPerInch, travel.XMax/mmPerInch
		travel.YMin, travel.YMax = travel.YMin/mmPerInch, travel.YMax/mmPerInch
		travel.ZMin, travel.ZMax = travel.ZMin/mmPerInch, travel.ZMax/mmPerInch
	}
	for _, out := range outputs {
		violations := gcode.CheckTravelLimits(gcode.ParseGCode(out.GCode), travel)
		for _, w := range gcode.FormatLimitWarnings(violations) {
			logger.Warn("travel limit exceeded", "section", out.Name, "detail", w)
		}
	}
}
