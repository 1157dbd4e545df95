package diag

import (
	"strings"
	"testing"

	"github.com/uidl-lang/uidlc/internal/token"
)

func TestFormatIncludesCaretAtColumn(t *testing.T) {
	src := token.NewSource("Box { orientation: 5; }")
	r := token.NewRange(19, 20, src) // the "5"
	d := New(TypeMismatch, r, "cannot assign int to Orientation")

	out := Format(d, "demo.ui", src)
	if !strings.Contains(out, "cannot assign int to Orientation") {
		t.Fatalf("expected message in output, got: %s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("expected caret in output, got: %s", out)
	}
	if !strings.Contains(out, "demo.ui:1:20") {
		t.Fatalf("expected file:line:column header, got: %s", out)
	}
}

func TestFormatAllSummaryCount(t *testing.T) {
	src := token.NewSource("a\nb\n")
	var bag Bag
	bag.Add(New(ParseError, token.NewRange(0, 1, src), "first"))
	bag.Add(New(ParseError, token.NewRange(2, 3, src), "second"))

	out := FormatAll(&bag, "", src)
	if !strings.Contains(out, "2 diagnostic(s)") {
		t.Fatalf("expected summary count, got: %s", out)
	}
}

func TestBagHasErrors(t *testing.T) {
	var bag Bag
	bag.Add(New(DeprecatedUse, token.Range{}, "deprecated"))
	if bag.HasErrors() {
		t.Error("a warning-only bag should not report HasErrors")
	}
	bag.Add(New(TypeMismatch, token.Range{}, "mismatch"))
	if !bag.HasErrors() {
		t.Error("expected HasErrors once an Error-severity diagnostic is added")
	}
}

func TestDidYouMean(t *testing.T) {
	candidates := []string{"orientation", "opacity", "margin-top"}
	if got := DidYouMean("orientaiton", candidates); got != "orientation" {
		t.Errorf("DidYouMean(orientaiton) = %q, want orientation", got)
	}
	if got := DidYouMean("completely-unrelated-name", candidates); got != "" {
		t.Errorf("DidYouMean(completely-unrelated-name) = %q, want empty", got)
	}
}

func TestDidYouMeanCaseOnly(t *testing.T) {
	candidates := []string{"Vertical", "Horizontal"}
	if got := DidYouMean("vertical", candidates); got != "Vertical" {
		t.Errorf("DidYouMean(vertical) = %q, want Vertical", got)
	}
}

func TestRankSuggestionsOrdersByDistance(t *testing.T) {
	candidates := []string{"opacity", "orientation", "orientaiton-typo"}
	ranked := RankSuggestions("orientaiton", candidates)
	if len(ranked) == 0 || ranked[0] != "orientation" {
		t.Fatalf("expected orientation to rank first, got %v", ranked)
	}
}

func TestKindDefaultSeverity(t *testing.T) {
	if DeprecatedUse.DefaultSeverity() != SeverityWarning {
		t.Error("DeprecatedUse should default to warning")
	}
	if TypeMismatch.DefaultSeverity() != SeverityError {
		t.Error("TypeMismatch should default to error")
	}
}
