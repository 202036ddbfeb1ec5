package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"havoc/internal/diag"
	"havoc/internal/driver"
	"havoc/internal/program"
	"havoc/internal/project"
	"havoc/internal/trace"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <artifact.havoc-ir>",
	Short: "JIT-compile and execute a program artifact's main",
	Long:  "Run drives C8's four passes with C10's compile-to-memory sink, then resolves and calls main through the loaded plugin (spec.md §6).",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecution,
}

func init() {
	runCmd.Flags().Int("opt-level", -1, "optimization level 0-3 (overrides [build].opt_level)")
}

func runExecution(cmd *cobra.Command, args []string) error {
	manifest, _, err := project.Load(".")
	if err != nil {
		return err
	}

	optLevel := 0
	if manifest != nil {
		optLevel = manifest.Config.Build.OptLevel
	}
	if v, _ := cmd.Flags().GetInt("opt-level"); v >= 0 {
		optLevel = v
	}

	source, err := readFileOrStdin(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	prog, err := program.Decode(source)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	result, err := driver.Compile(&prog.File, driver.Options{
		OptLevel:  optLevel,
		Sink:      driver.SinkMemory,
		ConstFold: true,
		Tracer:    trace.FromContext(cmd.Context()),
	})
	if err != nil {
		diag.Fatal(diag.New(diag.SevError, diag.CodeContractViolation, err.Error()))
	}

	sym, err := result.Artifact.GetFunction("main")
	if err != nil {
		diag.Fatal(diag.New(diag.SevError, diag.CodeContractViolation, err.Error()))
	}
	entry, ok := sym.(func() int32)
	if !ok {
		return fmt.Errorf("run: main has an unexpected JIT signature")
	}

	code := entry()
	fmt.Fprintf(cmd.OutOrStdout(), "exit: %d\n", code)
	if code != 0 {
		os.Exit(int(code))
	}
	return nil
}
