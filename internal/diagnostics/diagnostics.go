// Package diagnostics is the central registry every other core
// component reports through (spec §4.8). It owns diagnostic codes,
// hint/suggestion templates, and stage classification, and renders
// user-visible failures with code, kind, file:line:column, problematic
// token, hint, suggestion, caused-by, and source context lines (§7).
//
// Grounded on original_source/src/error/error_catalog.{hh,cpp} and
// error_message.hh; the Go shape trades the C++ singleton-with-mutex for
// a package-level var guarded by sync.RWMutex (spec §5: "process-wide
// singleton guarded by an internal mutex").
package diagnostics

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Stage classifies where a diagnostic originated, and gates its code
// range per spec §4.8/§7.
type Stage int

const (
	Lexical Stage = iota
	Syntax
	Semantic
	Runtime
	Bytecode
	Compilation
)

func (s Stage) String() string {
	switch s {
	case Lexical:
		return "lexical"
	case Syntax:
		return "syntax"
	case Semantic:
		return "semantic"
	case Runtime:
		return "runtime"
	case Bytecode:
		return "bytecode"
	case Compilation:
		return "compilation"
	default:
		return "unknown"
	}
}

func (s Stage) codeRange() (lo, hi int) {
	switch s {
	case Lexical:
		return 1, 99
	case Syntax:
		return 100, 199
	case Semantic:
		return 200, 299
	case Runtime:
		return 400, 499
	case Bytecode:
		return 500, 599
	case Compilation:
		return 600, 699
	default:
		return 0, 0
	}
}

// BlockContext records an unclosed construct's opener, for "caused by"
// chaining (spec §7, §SUPPLEMENTED FEATURES).
type BlockContext struct {
	BlockType   string
	StartLine   int
	StartColumn int
	StartLexeme string
}

// Definition is a catalogued error kind: a code, a regex pattern over
// the rendered message (for re-classification), and hint/suggestion
// templates using {lexeme}/{expected}/{file}/{line}/{column}.
type Definition struct {
	Code                string
	Type                string
	Stage               Stage
	Pattern             string
	HintTemplate        string
	SuggestionTemplate  string
	CommonCauses        []string

	compiled *regexp.Regexp
}

// Diagnostic is one reported failure.
type Diagnostic struct {
	Code             string
	Type             string
	Stage            Stage
	Message          string
	File             string
	Line             int
	Column           int
	ProblematicToken string
	Hint             string
	Suggestion       string
	CausedBy         *BlockContext
	ContextLines     []string
	ExpectedValue    string
}

func (d *Diagnostic) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s[%s]: %s\n", d.Code, d.Type, d.Message)
	if d.File != "" {
		fmt.Fprintf(&sb, "  at %s:%d:%d\n", d.File, d.Line, d.Column)
	}
	if len(d.ContextLines) > 0 {
		sb.WriteString("\n")
		for _, l := range d.ContextLines {
			fmt.Fprintf(&sb, "  %s\n", l)
		}
	}
	if d.Hint != "" {
		fmt.Fprintf(&sb, "hint: %s\n", d.Hint)
	}
	if d.Suggestion != "" {
		fmt.Fprintf(&sb, "suggestion: %s\n", d.Suggestion)
	}
	if d.CausedBy != nil {
		fmt.Fprintf(&sb, "caused by: unclosed %s opened at %d:%d (`%s`)\n",
			d.CausedBy.BlockType, d.CausedBy.StartLine, d.CausedBy.StartColumn, d.CausedBy.StartLexeme)
	}
	return sb.String()
}

// Error implements the error interface so a Diagnostic can be wrapped
// with github.com/pkg/errors across package boundaries.
func (d *Diagnostic) Error() string { return d.String() }

// Catalog is the process-wide registry of Definitions plus a memoized
// stage+message -> code cache for generate_error_code idempotence
// (spec §8: "two successive identical calls ... return the same code").
type Catalog struct {
	mu          sync.RWMutex
	byCode      map[string]*Definition
	byStage     map[Stage][]*Definition
	codeCache   map[string]string // "stage|message" -> code
	nextPerStage map[Stage]int
	initialized bool
}

var (
	instance     *Catalog
	instanceOnce sync.Once
)

// Get returns the lazily initialized, process-wide singleton.
func Get() *Catalog {
	instanceOnce.Do(func() {
		instance = newCatalog()
		instance.initialize()
	})
	return instance
}

func newCatalog() *Catalog {
	return &Catalog{
		byCode:       make(map[string]*Definition),
		byStage:      make(map[Stage][]*Definition),
		codeCache:    make(map[string]string),
		nextPerStage: make(map[Stage]int),
	}
}

// initialize populates the catalog with the builtin definitions named
// throughout spec §7. Unknown/ad-hoc diagnostics still get a code
// minted via GenerateErrorCode.
func (c *Catalog) initialize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return
	}
	defs := []*Definition{
		{Code: "E201", Type: "SemanticError", Stage: Semantic, Pattern: `unhandled fallible expression`,
			HintTemplate:       "the result of calling `{lexeme}` may be an error and must be handled",
			SuggestionTemplate: "use `{lexeme}?` to propagate it or wrap the call in a match"},
		{Code: "E202", Type: "SemanticError", Stage: Semantic, Pattern: `cannot be propagated by function`,
			HintTemplate:       "function `{expected}` does not declare this error in its throws set",
			SuggestionTemplate: "add the error type to `{expected}`'s throws clause or handle it locally"},
		{Code: "E203", Type: "SemanticError", Stage: Semantic, Pattern: `non-exhaustive match`,
			HintTemplate:       "the match is missing a pattern for `{expected}`",
			SuggestionTemplate: "add an `err {expected}` arm, or a generic `err _` arm"},
		{Code: "E204", Type: "SemanticError", Stage: Semantic, Pattern: `unknown error type`,
			HintTemplate:       "`{lexeme}` is not a registered error type",
			SuggestionTemplate: "did you mean one of the built-in error types?"},
		{Code: "E401", Type: "RuntimeError", Stage: Runtime, Pattern: `division by zero`,
			HintTemplate: "the divisor evaluated to zero at {file}:{line}"},
		{Code: "E402", Type: "RuntimeError", Stage: Runtime, Pattern: `index out of bounds`,
			HintTemplate: "index {lexeme} is outside the container's bounds"},
		{Code: "E501", Type: "BytecodeError", Stage: Bytecode, Pattern: `break outside loop|continue outside loop`,
			HintTemplate: "`{lexeme}` must appear inside a surrounding loop"},
		{Code: "E601", Type: "CompilationError", Stage: Compilation, Pattern: `jit compilation failed`,
			HintTemplate: "the JIT backend reported: {expected}"},
	}
	for _, d := range defs {
		c.addLocked(d)
	}
	c.initialized = true
}

func (c *Catalog) addLocked(d *Definition) bool {
	if _, exists := c.byCode[d.Code]; exists {
		return false
	}
	compiled, err := regexp.Compile("(?i)" + d.Pattern)
	if err != nil {
		compiled = nil
	}
	d.compiled = compiled
	c.byCode[d.Code] = d
	c.byStage[d.Stage] = append(c.byStage[d.Stage], d)
	return true
}

// AddDefinition registers a custom definition; returns false if the code
// already exists.
func (c *Catalog) AddDefinition(d *Definition) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(d)
}

// RemoveDefinition removes a definition by code.
func (c *Catalog) RemoveDefinition(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.byCode[code]
	if !ok {
		return false
	}
	delete(c.byCode, code)
	list := c.byStage[d.Stage]
	for i, e := range list {
		if e == d {
			c.byStage[d.Stage] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return true
}

// LookupByCode returns the Definition for an exact code, or nil.
func (c *Catalog) LookupByCode(code string) *Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byCode[code]
}

// LookupByMessage classifies message against every Definition in
// stage, case-insensitively, returning the first match.
func (c *Catalog) LookupByMessage(message string, stage Stage) *Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.byStage[stage] {
		if d.compiled != nil && d.compiled.MatchString(message) {
			return d
		}
	}
	return nil
}

// DefinitionsForStage returns every Definition registered for stage.
func (c *Catalog) DefinitionsForStage(stage Stage) []*Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Definition, len(c.byStage[stage]))
	copy(out, c.byStage[stage])
	return out
}

// DefinitionCount returns the total number of registered definitions.
func (c *Catalog) DefinitionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byCode)
}

// Clear empties the catalog — mainly for tests.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byCode = make(map[string]*Definition)
	c.byStage = make(map[Stage][]*Definition)
	c.codeCache = make(map[string]string)
	c.nextPerStage = make(map[Stage]int)
	c.initialized = false
}

// GenerateErrorCode mints (or recalls) a stable code for (stage,
// message), honoring the idempotence property of spec §8: two
// successive identical calls return the same code.
func (c *Catalog) GenerateErrorCode(stage Stage, message string) string {
	key := stage.String() + "|" + message
	c.mu.Lock()
	defer c.mu.Unlock()
	if code, ok := c.codeCache[key]; ok {
		return code
	}
	lo, hi := stage.codeRange()
	n := c.nextPerStage[stage]
	code := fmt.Sprintf("E%03d", lo+n)
	if lo+n > hi {
		code = fmt.Sprintf("E%03dX", lo+n-hi) // overflowed the stage's range
	}
	c.nextPerStage[stage] = n + 1
	c.codeCache[key] = code
	return code
}

// Report builds a Diagnostic for message in stage, resolving a catalogued
// Definition when one matches and substituting its hint/suggestion
// templates; otherwise it mints a fresh code via GenerateErrorCode.
func (c *Catalog) Report(stage Stage, message, file string, line, column int, lexeme, expected string) *Diagnostic {
	def := c.LookupByMessage(message, stage)
	d := &Diagnostic{
		Stage:            stage,
		Message:          message,
		File:             file,
		Line:             line,
		Column:           column,
		ProblematicToken: lexeme,
		ExpectedValue:    expected,
	}
	if def != nil {
		d.Code = def.Code
		d.Type = def.Type
		d.Hint = substitute(def.HintTemplate, lexeme, expected, file, line, column)
		d.Suggestion = substitute(def.SuggestionTemplate, lexeme, expected, file, line, column)
	} else {
		d.Code = c.GenerateErrorCode(stage, message)
		d.Type = defaultTypeForStage(stage)
	}
	return d
}

func defaultTypeForStage(s Stage) string {
	switch s {
	case Lexical:
		return "LexicalError"
	case Syntax:
		return "SyntaxError"
	case Semantic:
		return "SemanticError"
	case Runtime:
		return "RuntimeError"
	case Bytecode:
		return "BytecodeError"
	case Compilation:
		return "CompilationError"
	default:
		return "Error"
	}
}

func substitute(template, lexeme, expected, file string, line, column int) string {
	if template == "" {
		return ""
	}
	r := strings.NewReplacer(
		"{lexeme}", lexeme,
		"{expected}", expected,
		"{file}", file,
		"{line}", fmt.Sprintf("%d", line),
		"{column}", fmt.Sprintf("%d", column),
	)
	return r.Replace(template)
}

// WrapStageError wraps err with the (stage, file:line:column) location
// using github.com/pkg/errors, for propagation across package
// boundaries where the full Diagnostic shape isn't yet known (e.g. a
// JIT emitter failure bubbling up before diagnostics has rendered it).
func WrapStageError(err error, stage Stage, file string, line int) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "%s error at %s:%d", stage, file, line)
}
