package combinator

import (
	"testing"

	"github.com/uidl-lang/uidlc/internal/lexer"
	"github.com/uidl-lang/uidlc/internal/token"
)

func cursorFor(t *testing.T, text string) *Cursor {
	t.Helper()
	toks, errs := lexer.Tokenize(text)
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	src := token.NewSource(text)
	return NewCursor(toks, src)
}

func TestMatchAndAdvance(t *testing.T) {
	c := cursorFor(t, "{ }")
	r := Match("{")(c, NewCtx())
	if !r.Ok() || r.Status != StatusSuccess {
		t.Fatalf("expected success matching '{', got %+v", r)
	}
	if r.Cursor.Current().Start != c.Peek(1).Start {
		t.Errorf("expected cursor to advance past '{'")
	}
}

func TestMatchFailureDoesNotAdvance(t *testing.T) {
	c := cursorFor(t, "{ }")
	r := Match("}")(c, NewCtx())
	if r.Ok() {
		t.Fatal("expected failure matching '}' at '{'")
	}
	if r.Cursor.Pos() != c.Pos() {
		t.Error("a failed match should not advance the cursor")
	}
}

func TestSequenceAllOrNothing(t *testing.T) {
	c := cursorFor(t, "Box {")
	p := Sequence("ObjectHead", UseIdent("class"), Match("{"))
	r := p(c, NewCtx())
	if !r.Ok() {
		t.Fatalf("expected sequence to succeed, got %+v", r)
	}
	if _, ok := r.Group.Token("class"); !ok {
		t.Error("expected captured class token")
	}
}

func TestSequenceFailsRollsBack(t *testing.T) {
	c := cursorFor(t, "Box ;")
	p := Sequence("ObjectHead", UseIdent("class"), Match("{"))
	r := p(c, NewCtx())
	if r.Ok() {
		t.Fatal("expected sequence to fail when second part doesn't match")
	}
	if r.Cursor.Pos() != c.Pos() {
		t.Error("failed sequence must not advance the cursor")
	}
}

func TestAnyOfFirstMatch(t *testing.T) {
	c := cursorFor(t, "42")
	p := AnyOf(UseIdent("x"), UseNumber("n"))
	r := p(c, NewCtx())
	if !r.Ok() {
		t.Fatalf("expected AnyOf to succeed via second alternative, got %+v", r)
	}
	if _, ok := r.Group.Token("n"); !ok {
		t.Error("expected number capture from the matching alternative")
	}
}

func TestOptionalNeverFails(t *testing.T) {
	c := cursorFor(t, "42")
	p := Optional(Match("{"))
	r := p(c, NewCtx())
	if !r.Ok() || r.Status != StatusEmpty {
		t.Fatalf("expected Optional to return an empty success on mismatch, got %+v", r)
	}
	if r.Cursor.Pos() != c.Pos() {
		t.Error("Optional on a non-matching input should not advance")
	}
}

func TestZeroOrMoreCollectsChildren(t *testing.T) {
	c := cursorFor(t, "a, b, c")
	item := UseIdent("id")
	sepThenItem := Sequence("item", Optional(Match(",")), item)
	p := ZeroOrMore("list", sepThenItem)
	r := p(c, NewCtx())
	if !r.Ok() {
		t.Fatalf("expected ZeroOrMore to succeed, got %+v", r)
	}
	if len(r.Group.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(r.Group.Children))
	}
}

func TestDelimitedParsesCommaSeparatedList(t *testing.T) {
	c := cursorFor(t, "a, b, c")
	p := Delimited("list", UseIdent("id"), Match(","))
	r := p(c, NewCtx())
	if !r.Ok() {
		t.Fatalf("expected delimited list to succeed, got %+v", r)
	}
	if len(r.Group.Children) != 3 {
		t.Fatalf("expected 3 items, got %d", len(r.Group.Children))
	}
	if !r.Cursor.AtEOF() {
		t.Error("expected cursor to reach EOF after consuming the whole list")
	}
}

func TestUntilRecoversFromFailures(t *testing.T) {
	text := "a # b }"
	toks, _ := lexer.Tokenize(text) // '#' is an illegal byte; its lex error is expected here
	c := NewCursor(toks, token.NewSource(text))
	item := UseIdent("id")
	terminator := Match("}")
	ctx := NewCtx()
	p := Until("body", item, terminator, "expected identifier")
	r := p(c, ctx)
	if !r.Ok() {
		t.Fatalf("Until should never fail, got %+v", r)
	}
	if !r.Group.Incomplete {
		t.Error("expected group to be marked incomplete after recovery")
	}
	if ctx.Diags.Len() == 0 {
		t.Error("expected a diagnostic recorded for the skipped illegal token")
	}
	if r.Cursor.Current().Start != c.Peek(3).Start {
		t.Errorf("expected cursor positioned at '}' after recovery")
	}
}

func TestStatementConsumesTerminator(t *testing.T) {
	c := cursorFor(t, "orientation: vertical;")
	p := Statement("Property", "expected property", UseIdent("name"), Match(":"), UseIdent("value"))
	r := p(c, NewCtx())
	if !r.Ok() {
		t.Fatalf("expected statement to succeed, got %+v", r)
	}
	if !r.Cursor.AtEOF() {
		t.Error("expected statement to consume the trailing ';'")
	}
	if r.Group.Incomplete {
		t.Error("a well-formed statement should not be marked incomplete")
	}
}

func TestGroupCWrapsChildResult(t *testing.T) {
	c := cursorFor(t, "Box")
	p := GroupC("Ident", UseIdent("name"))
	r := p(c, NewCtx())
	if !r.Ok() || r.Group.Kind != "Ident" {
		t.Fatalf("expected a group tagged Ident, got %+v", r)
	}
}

func TestPrattHandlesInfixPrecedence(t *testing.T) {
	table := NewPrattTable()
	table.Prefix(token.IDENT, func(c *Cursor, ctx *Ctx) Result {
		g := newGroup("Lookup", c.Range())
		g.Tokens["name"] = c.Current()
		return success(c.Advance(), g)
	})
	table.Infix(".", 10, func(c *Cursor, ctx *Ctx, left *Group) Result {
		afterDot := c.Advance()
		nameTok := afterDot.Current()
		g := newGroup("Lookup", left.Range.Join(afterDot.Range()))
		g.Children = append(g.Children, left)
		g.Tokens["name"] = nameTok
		return success(afterDot.Advance(), g)
	})

	c := cursorFor(t, "a.b.c")
	r := table.Parse(0)(c, NewCtx())
	if !r.Ok() {
		t.Fatalf("expected Pratt parse to succeed, got %+v", r)
	}
	if !r.Cursor.AtEOF() {
		t.Error("expected the whole chain to be consumed")
	}
}
