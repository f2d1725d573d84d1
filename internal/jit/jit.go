// Package jit is the §4.6 JIT backend: it lowers LIR functions into an
// in-memory LLVM module via github.com/llir/llvm (internal/jit/emit.go)
// and drives the system clang/lld toolchain to turn that module into a
// loadable shared object, the way the original's JITBackend drives
// libgccjit (original_source/src/backend/jit/jit.hh/.cpp) — this Go
// module never hand-emits machine code itself.
package jit

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"plugin"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/netesy/limitly/internal/config"
	"github.com/netesy/limitly/internal/lir"
)

// CompileMode selects what compile() produces (spec §4.6 "Modes").
type CompileMode int

const (
	ToMemory CompileMode = iota
	ToFile
	ToExecutable
)

// CompileResult mirrors JIT::CompileResult: success flag, error
// message, and either a resolved function pointer (ToMemory) or an
// output path (ToFile/ToExecutable).
type CompileResult struct {
	ID               uuid.UUID
	Success          bool
	ErrorMessage     string
	CompiledFunction plugin.Symbol
	OutputFile       string
}

// Stats mirrors JIT::Stats.
type Stats struct {
	FunctionsCompiled    int
	InstructionsCompiled int
	CompilationTimeMs    float64
}

// Timer mirrors the original's private JITBackend::Timer helper.
type Timer struct{ start time.Time }

func NewTimer() Timer       { return Timer{start: time.Now()} }
func (t Timer) ElapsedMs() float64 { return float64(time.Since(t.start)) / float64(time.Millisecond) }

// Compiler accumulates LIR functions to compile and the toolchain
// state needed to turn them into native code.
type Compiler struct {
	cfg       *config.Config
	emitter   *emitter
	processed []*lir.Function
	errors    []string
	stats     Stats
}

// NewCompiler builds a Compiler; the optimization-flags and debug-mode
// knobs come from internal/config, which generalizes the original's
// enable_optimizations/set_debug_mode setter pair into functional
// options.
func NewCompiler(opts ...config.Option) *Compiler {
	return &Compiler{
		cfg:     config.New(opts...),
		emitter: newEmitter(),
	}
}

// EnableOptimizations mirrors JITBackend::enable_optimizations.
func (c *Compiler) EnableOptimizations(enable bool) {
	if enable {
		c.cfg.OptimizationFlags = lir.Peephole | lir.ConstantFold | lir.DeadCodeEliminate
	} else {
		c.cfg.OptimizationFlags = 0
	}
}

// SetDebugMode mirrors JITBackend::set_debug_mode.
func (c *Compiler) SetDebugMode(debug bool) { c.cfg.DebugMode = debug }

// ProcessFunction registers a LIR function for the next Compile call,
// running the configured optimizer passes over it first.
func (c *Compiler) ProcessFunction(fn *lir.Function) {
	if c.cfg.OptimizationFlags != 0 {
		lir.Optimize(fn, c.cfg.OptimizationFlags)
	}
	c.processed = append(c.processed, fn)
}

// Errors returns every error accumulated since construction.
func (c *Compiler) Errors() []string { return c.errors }

// GetStats returns the accumulated compilation statistics.
func (c *Compiler) GetStats() Stats { return c.stats }

// Compile runs the compilation protocol of spec §4.6 steps 2-6: lower
// every processed function into the module, then hand the module to
// the external toolchain per mode.
func (c *Compiler) Compile(mode CompileMode, outputPath string) (*CompileResult, error) {
	timer := NewTimer()
	result := &CompileResult{ID: uuid.New()}

	instCount := 0
	for _, fn := range c.processed {
		if _, err := c.emitter.emitFunction(fn); err != nil {
			result.ErrorMessage = err.Error()
			c.errors = append(c.errors, result.ErrorMessage)
			return result, errors.Wrap(err, "jit: emit function")
		}
		for _, b := range fn.CFG.Blocks {
			instCount += len(b.Instructions)
		}
	}
	c.stats.FunctionsCompiled += len(c.processed)
	c.stats.InstructionsCompiled += instCount

	irText := c.emitter.module.String()

	switch mode {
	case ToFile:
		if outputPath == "" {
			outputPath = fmt.Sprintf("limitly-%s.o", result.ID)
		}
		if err := compileToObject(irText, outputPath); err != nil {
			result.ErrorMessage = err.Error()
			c.errors = append(c.errors, result.ErrorMessage)
			return result, err
		}
		result.Success = true
		result.OutputFile = outputPath

	case ToExecutable:
		if outputPath == "" {
			outputPath = fmt.Sprintf("limitly-%s", result.ID)
		}
		if err := compileToExecutable(irText, outputPath); err != nil {
			result.ErrorMessage = err.Error()
			c.errors = append(c.errors, result.ErrorMessage)
			return result, err
		}
		result.Success = true
		result.OutputFile = outputPath

	case ToMemory:
		fnName := ""
		if len(c.processed) > 0 {
			fnName = c.processed[len(c.processed)-1].Name
		}
		sym, soPath, err := compileToMemory(irText, fnName)
		if err != nil {
			result.ErrorMessage = err.Error()
			c.errors = append(c.errors, result.ErrorMessage)
			return result, err
		}
		result.Success = true
		result.CompiledFunction = sym
		result.OutputFile = soPath
	}

	c.stats.CompilationTimeMs += timer.ElapsedMs()
	return result, nil
}

// compileToObject shells out to clang to render LLVM IR text into a
// relocatable object file (spec §4.6 mode ToFile).
func compileToObject(irText, outputPath string) error {
	llPath, err := writeIR(irText)
	if err != nil {
		return err
	}
	defer os.Remove(llPath)
	cmd := exec.Command("clang", "-c", llPath, "-o", outputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "clang -c failed: %s", out)
	}
	return nil
}

// compileToExecutable links a standalone binary (mode ToExecutable).
func compileToExecutable(irText, outputPath string) error {
	llPath, err := writeIR(irText)
	if err != nil {
		return err
	}
	defer os.Remove(llPath)
	cmd := exec.Command("clang", llPath, "-o", outputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "clang link failed: %s", out)
	}
	return nil
}

// compileToMemory builds a shared object and resolves fnName through
// Go's plugin loader, the closest stand-in the Go ecosystem has for
// "compile to an in-memory module and resolve a symbol to a function
// pointer" (spec §4.6) without writing a CGo shim.
func compileToMemory(irText, fnName string) (plugin.Symbol, string, error) {
	llPath, err := writeIR(irText)
	if err != nil {
		return nil, "", err
	}
	defer os.Remove(llPath)

	soPath := filepath.Join(os.TempDir(), fmt.Sprintf("limitly-jit-%s.so", uuid.NewString()))
	cmd := exec.Command("clang", "-shared", "-fPIC", llPath, "-o", soPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, "", errors.Wrapf(err, "clang -shared failed: %s", out)
	}

	p, err := plugin.Open(soPath)
	if err != nil {
		return nil, soPath, errors.Wrap(err, "plugin.Open")
	}
	sym, err := p.Lookup(fnName)
	if err != nil {
		return nil, soPath, errors.Wrapf(err, "resolving symbol %s", fnName)
	}
	return sym, soPath, nil
}

func writeIR(irText string) (string, error) {
	f, err := os.CreateTemp("", "limitly-*.ll")
	if err != nil {
		return "", errors.Wrap(err, "creating temp IR file")
	}
	defer f.Close()
	if _, err := f.WriteString(irText); err != nil {
		return "", errors.Wrap(err, "writing IR text")
	}
	return f.Name(), nil
}
