package diagnostics

import (
	"strings"
	"testing"
)

func TestLookupByCodeAndStage(t *testing.T) {
	cat := Get()
	def := cat.LookupByCode("E401")
	if def == nil || def.Stage != Runtime {
		t.Fatalf("expected E401 to be a registered Runtime definition, got %v", def)
	}
	stageDefs := cat.DefinitionsForStage(Semantic)
	if len(stageDefs) == 0 {
		t.Fatal("expected at least one Semantic definition")
	}
}

func TestLookupByMessageIsCaseInsensitiveAndStageFiltered(t *testing.T) {
	cat := Get()
	if d := cat.LookupByMessage("DIVISION BY ZERO in foo", Runtime); d == nil || d.Code != "E401" {
		t.Fatalf("expected case-insensitive match to E401, got %v", d)
	}
	if d := cat.LookupByMessage("division by zero in foo", Semantic); d != nil {
		t.Fatalf("expected no match outside the Runtime stage, got %v", d)
	}
}

func TestGenerateErrorCodeIsIdempotent(t *testing.T) {
	cat := Get()
	a := cat.GenerateErrorCode(Semantic, "some ad-hoc new diagnostic message")
	b := cat.GenerateErrorCode(Semantic, "some ad-hoc new diagnostic message")
	if a != b {
		t.Fatalf("GenerateErrorCode not idempotent: %s vs %s", a, b)
	}
	c := cat.GenerateErrorCode(Semantic, "a different message entirely")
	if c == a {
		t.Fatalf("expected distinct messages to mint distinct codes, got %s for both", a)
	}
}

func TestReportSubstitutesTemplates(t *testing.T) {
	cat := Get()
	d := cat.Report(Runtime, "division by zero", "main.lim", 10, 4, "x / 0", "")
	if d.Code != "E401" {
		t.Fatalf("expected E401, got %s", d.Code)
	}
	if d.Hint == "" {
		t.Fatal("expected a substituted hint")
	}
}

func TestAddAndRemoveDefinition(t *testing.T) {
	cat := newCatalog()
	cat.initialize()
	ok := cat.AddDefinition(&Definition{Code: "E999", Type: "Custom", Stage: Semantic, Pattern: "custom thing"})
	if !ok {
		t.Fatal("expected AddDefinition to succeed for a new code")
	}
	if cat.AddDefinition(&Definition{Code: "E999", Type: "Custom", Stage: Semantic, Pattern: "dup"}) {
		t.Fatal("expected AddDefinition to reject a duplicate code")
	}
	if !cat.RemoveDefinition("E999") {
		t.Fatal("expected RemoveDefinition to succeed")
	}
	if cat.LookupByCode("E999") != nil {
		t.Fatal("expected E999 to be gone after removal")
	}
}

func TestBlockContextCausedByRendersInString(t *testing.T) {
	d := &Diagnostic{
		Code: "E199", Type: "SyntaxError", Stage: Syntax,
		Message: "unexpected end of file",
		CausedBy: &BlockContext{BlockType: "block", StartLine: 3, StartColumn: 1, StartLexeme: "{"},
	}
	s := d.String()
	if s == "" {
		t.Fatal("expected non-empty rendering")
	}
	if !strings.Contains(s, "caused by: unclosed block opened at 3:1") {
		t.Fatalf("expected the caused-by opener in the rendering, got %q", s)
	}
}
