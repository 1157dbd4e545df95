package lexer

import (
	"strings"
	"testing"

	"github.com/uidl-lang/uidlc/internal/token"
)

func TestTokenizeBasic(t *testing.T) {
	input := `using Gtk 4.0;
Box { orientation: vertical; }`

	toks, errs := Tokenize(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected lexer errors: %v", errs)
	}

	want := []token.Kind{
		token.IDENT, token.WHITESPACE, token.IDENT, token.WHITESPACE, token.NUMBER, token.SEMI,
		token.WHITESPACE,
		token.IDENT, token.WHITESPACE, token.LBRACE, token.WHITESPACE,
		token.IDENT, token.OPERATOR, token.WHITESPACE, token.IDENT, token.SEMI, token.WHITESPACE,
		token.RBRACE, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestTokenizeTotality(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"@Gtk.Widget",
		`"unterminated`,
		"'esc\\",
		"/* unterminated",
		"# illegal byte",
		"0x1F_2A",
		"1_000.5e-3",
	}
	for _, in := range inputs {
		toks, _ := Tokenize(in)
		if len(toks) == 0 {
			t.Fatalf("Tokenize(%q) returned no tokens", in)
		}
		if toks[len(toks)-1].Kind != token.EOF {
			t.Fatalf("Tokenize(%q) did not end in EOF: %+v", in, toks)
		}
		var sb strings.Builder
		for _, tok := range toks {
			sb.WriteString(in[tok.Start:tok.End])
		}
		if sb.String() != in {
			t.Errorf("Tokenize(%q) did not round-trip: got %q", in, sb.String())
		}
	}
}

func TestTokenizeNumbers(t *testing.T) {
	cases := []struct {
		input string
		text  string
	}{
		{"42", "42"},
		{"0xFF", "0xFF"},
		{"1_000", "1_000"},
		{"3.14", "3.14"},
		{"1e10", "1e10"},
		{"1.5e-3", "1.5e-3"},
	}
	for _, c := range cases {
		toks, errs := Tokenize(c.input)
		if len(errs) != 0 {
			t.Fatalf("%q: unexpected errors %v", c.input, errs)
		}
		if toks[0].Kind != token.NUMBER {
			t.Fatalf("%q: expected NUMBER, got %s", c.input, toks[0].Kind)
		}
		if got := c.input[toks[0].Start:toks[0].End]; got != c.text {
			t.Errorf("%q: expected lexeme %q, got %q", c.input, c.text, got)
		}
	}
}

func TestTokenizeStrings(t *testing.T) {
	for _, q := range []byte{'"', '\''} {
		input := string(q) + "hello\\nworld" + string(q)
		toks, errs := Tokenize(input)
		if len(errs) != 0 {
			t.Fatalf("%q: unexpected errors %v", input, errs)
		}
		if toks[0].Kind != token.QUOTED {
			t.Fatalf("%q: expected QUOTED, got %s", input, toks[0].Kind)
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("a b c")
	first := l.Peek(0)
	again := l.Peek(0)
	if first != again {
		t.Fatalf("Peek(0) not idempotent: %+v vs %+v", first, again)
	}
	next := l.NextToken()
	if next != first {
		t.Fatalf("NextToken() after Peek(0) mismatch: %+v vs %+v", next, first)
	}
}
