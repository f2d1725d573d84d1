// cmd/limitly is a trimmed driver over the core pipeline: type-check,
// generate bytecode, build LIR, optimize, and run either the
// register-VM oracle or the JIT. No source-to-internal/ast front end
// exists in this repo yet (see DESIGN.md — a surface parser is an
// explicit non-goal of the distilled spec this module implements), so
// this driver runs a small fixed set of hand-built seed scenarios
// (internal/scenarios) instead of parsing source files — grounded on
// the teacher's cmd/sentra subcommand-dispatch shape (alias map, flag
// filtering per subcommand) trimmed to what the core pipeline actually
// needs today.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/netesy/limitly/internal/bytecode"
	"github.com/netesy/limitly/internal/config"
	"github.com/netesy/limitly/internal/jit"
	"github.com/netesy/limitly/internal/lir"
	"github.com/netesy/limitly/internal/regvm"
	"github.com/netesy/limitly/internal/scenarios"
	"github.com/netesy/limitly/internal/symbols"
	"github.com/netesy/limitly/internal/typecheck"
)

var commandAliases = map[string]string{
	"r": "run",
	"l": "list",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}
	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "list":
		for _, name := range scenarios.Names() {
			fmt.Println(name)
		}
	case "run":
		runCmd(args[1:])
	case "--help", "-h", "help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "limitly: unknown command %q\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	useJIT := fs.Bool("jit", false, "compile through the LLVM JIT backend instead of the register-VM oracle")
	noOpt := fs.Bool("no-optimize", false, "skip LIR optimizer passes")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "limitly run: expected a scenario name (see `limitly list`)")
		os.Exit(1)
	}
	name := rest[0]

	scenario, ok := scenarios.Get(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "limitly run: unknown scenario %q\n", name)
		os.Exit(1)
	}

	table := symbols.NewTable()
	checker := typecheck.NewChecker(table)
	checker.CheckProgram(scenario.Program)
	if diags := checker.Diagnostics(); len(diags) > 0 {
		for _, d := range diags {
			printDiagnostic(d.String())
		}
		os.Exit(1)
	}

	gen := bytecode.NewGenerator(table)
	prog := gen.GenerateProgram(scenario.Program)
	if diags := gen.Diagnostics(); len(diags) > 0 {
		for _, d := range diags {
			printDiagnostic(d.String())
		}
		os.Exit(1)
	}

	fn := lir.BuildFunction(name, prog, 0, prog.Len())
	flags := lir.Peephole | lir.ConstantFold | lir.DeadCodeEliminate
	if *noOpt {
		flags = 0
	}
	lir.Optimize(fn, flags)

	if *useJIT {
		c := jit.NewCompiler(config.WithOptimizations(flags))
		c.ProcessFunction(fn)
		result, err := c.Compile(jit.ToMemory, "")
		if err != nil || !result.Success {
			fmt.Fprintf(os.Stderr, "limitly run: jit compile failed: %v (%s)\n", err, result.ErrorMessage)
			os.Exit(1)
		}
		stats := c.GetStats()
		fmt.Printf("compiled %d function(s), %s instructions, %.2fms\n",
			stats.FunctionsCompiled, humanize.Comma(int64(stats.InstructionsCompiled)), stats.CompilationTimeMs)
		fmt.Printf("output: %s\n", result.OutputFile)
		return
	}

	vm := regvm.New()
	out, err := vm.Run(fn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "limitly run: %v\n", err)
		os.Exit(1)
	}
	for _, line := range vm.Printed() {
		fmt.Println(line)
	}
	fmt.Printf("result: %v\n", out)
}

func printDiagnostic(s string) {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", s)
		return
	}
	fmt.Fprintln(os.Stderr, s)
}

func showUsage() {
	fmt.Println(`limitly - core pipeline driver

Usage:
  limitly list              list the available seed scenarios
  limitly run <scenario>    type-check, compile, and execute a scenario
      --jit                 compile through the LLVM JIT instead of the oracle VM
      --no-optimize         skip LIR optimizer passes`)
}
