package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"havoc/internal/diag"
	"havoc/internal/driver"
	"havoc/internal/program"
	"havoc/internal/project"
	"havoc/internal/trace"
	"havoc/internal/ui"
)

// uiMode is the resolved value of the build command's --ui flag: force
// the progress TUI on or off, or pick automatically from the output
// stream's terminal-ness.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

var buildCmd = &cobra.Command{
	Use:   "build [flags] <artifact.havoc-ir>...",
	Short: "Compile one or more program artifacts to native code",
	Long:  "Build reads one or more msgpack-encoded program artifacts (C11) and drives C8's four passes and C10's sink over each, one goroutine per artifact via C15's batch driver when more than one is given.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  buildExecution,
}

func init() {
	buildCmd.Flags().Int("opt-level", -1, "optimization level 0-3 (overrides [build].opt_level)")
	buildCmd.Flags().String("emit", "", "exe|obj|shared|asm (overrides [build].emit)")
	buildCmd.Flags().String("output", "", "output path (single artifact only; overrides [build].output)")
	buildCmd.Flags().StringSlice("lib", nil, "link against this library (repeatable, appended to [build].libraries)")
	buildCmd.Flags().Bool("cache", true, "consult the disk cache (C16)")
	buildCmd.Flags().Int("jobs", 0, "concurrent compilations (0 = GOMAXPROCS)")
	buildCmd.Flags().String("ui", "auto", "progress UI: auto|on|off")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	manifest, _, err := project.Load(".")
	if err != nil {
		return err
	}

	optLevel, emit, output, libs, err := resolveBuildFlags(cmd, manifest)
	if err != nil {
		return err
	}
	if output != "" && len(args) > 1 {
		return fmt.Errorf("--output only applies to a single artifact")
	}
	kind, err := project.ArtifactKind(emit)
	if err != nil {
		return err
	}

	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	var cache *driver.DiskCache
	if useCache {
		cache, err = driver.OpenDiskCache("havoc")
		if err != nil {
			return fmt.Errorf("opening disk cache: %w", err)
		}
	}

	units := make([]driver.Unit, len(args))
	names := make([]string, len(args))
	tracer := trace.FromContext(cmd.Context())
	for i, path := range args {
		source, err := readFileOrStdin(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		prog, err := program.Decode(source)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		outPath := output
		if outPath == "" {
			outPath = path + ".out"
		}
		units[i] = driver.Unit{
			File:   &prog.File,
			Source: source,
			Opts: driver.Options{
				OptLevel:     optLevel,
				Sink:         driver.SinkFile,
				ArtifactKind: kind,
				OutputPath:   outPath,
				Libraries:    libs,
				ConstFold:    true,
				Tracer:       tracer,
			},
		}
		names[i] = path
	}

	var results []driver.UnitResult
	if shouldUseTUI(uiModeValue) && len(units) > 1 {
		results = ui.RunBatchWithProgress("building", names, func(p driver.Progress) []driver.UnitResult {
			return driver.RunBatch(cmd.Context(), units, jobs, cache, p)
		})
	} else {
		results = driver.RunBatch(cmd.Context(), units, jobs, cache, nil)
	}

	failures := 0
	for i, r := range results {
		if r.Err != nil {
			failures++
			diag.Print(diag.New(diag.SevError, diag.CodeContractViolation, fmt.Sprintf("%s: %v", names[i], r.Err)))
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d artifacts failed to build", failures, len(results))
	}

	_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "built %d artifact(s)\n", len(results))
	return nil
}

func resolveBuildFlags(cmd *cobra.Command, manifest *project.Manifest) (optLevel int, emit, output string, libs []string, err error) {
	if manifest != nil {
		optLevel = manifest.Config.Build.OptLevel
		emit = manifest.Config.Build.Emit
		output = manifest.Config.Build.Output
		libs = append(libs, manifest.Config.Build.Libraries...)
	}

	if v, _ := cmd.Flags().GetInt("opt-level"); v >= 0 {
		optLevel = v
	}
	if v, _ := cmd.Flags().GetString("emit"); v != "" {
		emit = v
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		output = v
	}
	extra, flagErr := cmd.Flags().GetStringSlice("lib")
	if flagErr != nil {
		return 0, "", "", nil, flagErr
	}
	libs = append(libs, extra...)
	return optLevel, emit, output, libs, nil
}

func readFileOrStdin(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
