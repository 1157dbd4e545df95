package ast

import (
	"fmt"
	"strings"

	"github.com/uidl-lang/uidlc/internal/combinator"
	"github.com/uidl-lang/uidlc/internal/diag"
	"github.com/uidl-lang/uidlc/internal/expr"
	"github.com/uidl-lang/uidlc/internal/token"
	"github.com/uidl-lang/uidlc/internal/types"
)

// Package grammar wiring: the combinator engine (C4) builds this
// language's source grammar (§6 "Source syntax") directly into the
// typed node hierarchy (C5), the same way internal/expr's parser.go
// wires C4's PrattTable onto C6's node constructors — a built node is
// carried across combinator boundaries as a captured literal value
// (ParseGroup's "keyed map of captured literal values", §3), keyed by
// astNodeKey, rather than materialized from a separately-walked Group
// tree.
const astNodeKey = "__astnode"

func wrapNode(cur *combinator.Cursor, n Node, incomplete bool) combinator.Result {
	g := &combinator.Group{Kind: n.Kind(), Range: n.Range(), Literals: map[string]any{astNodeKey: n}, Tokens: map[string]token.Token{}}
	g.Incomplete = incomplete
	return combinator.Result{Status: combinator.StatusSuccess, Cursor: cur, Group: g}
}

func nodeOf(g *combinator.Group) Node {
	if g == nil {
		return nil
	}
	if v, ok := g.Literal(astNodeKey); ok {
		return v.(Node)
	}
	return nil
}

func curText(c *combinator.Cursor) string {
	t := c.Current()
	return c.Source().Text[t.Start:t.End]
}

func peekText(c *combinator.Cursor, n int) string {
	t := c.Peek(n)
	return c.Source().Text[t.Start:t.End]
}

// Parse builds a UI document from a full token sequence, per §3/§6. It
// is the C4→C5 bridge: parse errors are recorded into env.Diags and
// recovered from by skipping forward, matching the "failures outside
// Statement/Until propagate to the nearest alternative, or to the top"
// policy (§4.4/§7).
func Parse(src *token.Source, toks []token.Token, env *Env) *UI {
	c := combinator.NewCursor(toks, src)
	ctx := &combinator.Ctx{Diags: env.Diags}
	ui := &UI{}
	startRng := c.Range()

	for {
		r := usingParser()(c, ctx)
		if r.Status != combinator.StatusSuccess {
			break
		}
		nsTok, _ := r.Group.Token("namespace")
		verTok, _ := r.Group.Token("version")
		ui.Imports = append(ui.Imports, Import{
			Namespace: src.Text[nsTok.Start:nsTok.End],
			Version:   src.Text[verTok.Start:verTok.End],
			Rng:       r.Group.Range,
		})
		c = r.Cursor
	}

	if r := translationDomainParser()(c, ctx); r.Status == combinator.StatusSuccess {
		if v, ok := r.Group.Literal("domain"); ok {
			ui.TranslationDomain = v.(string)
		}
		c = r.Cursor
	}

	endRng := startRng
	for !c.AtEOF() {
		if curText(c) == "template" {
			r := parseTemplate(c, ctx, env)
			if !r.Ok() {
				env.Diags.Add(diag.New(diag.ParseError, c.Range(), "expected a template declaration"))
				c = c.Advance()
				continue
			}
			tmpl := nodeOf(r.Group).(*Template)
			if ui.Template != nil {
				env.Diags.Add(diag.New(diag.DuplicateDefinition, tmpl.NameRng, "at most one template per file"))
			} else {
				ui.Template = tmpl
			}
			endRng = endRng.Join(r.Group.Range)
			c = r.Cursor
			continue
		}
		r := parseObject(c, ctx, env)
		if !r.Ok() {
			env.Diags.Add(diag.New(diag.ParseError, c.Range(), "expected an object or template declaration"))
			c = c.Advance()
			continue
		}
		ui.Objects = append(ui.Objects, nodeOf(r.Group).(*Object))
		endRng = endRng.Join(r.Group.Range)
		c = r.Cursor
	}

	ui.rng = endRng
	return ui
}

// usingParser matches `using Namespace version;` (§6).
func usingParser() combinator.Parser {
	body := combinator.Statement("Using", "expected `using <Namespace> <version>;`",
		combinator.Keyword("using"),
		combinator.UseIdent("namespace"),
		combinator.UseNumber("version"),
	)
	return func(c *combinator.Cursor, ctx *combinator.Ctx) combinator.Result {
		if curText(c) != "using" {
			return combinator.Result{Status: combinator.StatusFailure}
		}
		return body(c, ctx)
	}
}

// translationDomainParser matches `translation-domain "domain";` (§6).
func translationDomainParser() combinator.Parser {
	return func(c *combinator.Cursor, ctx *combinator.Ctx) combinator.Result {
		if curText(c) != "translation-domain" {
			return combinator.Result{Status: combinator.StatusFailure}
		}
		body := combinator.Statement("TranslationDomain", "expected `translation-domain \"domain\";`",
			combinator.Keyword("translation-domain"),
			combinator.UseQuoted("domain"),
		)
		r := body(c, ctx)
		if r.Ok() {
			if tok, ok := r.Group.Token("domain"); ok {
				r.Group.Literals["domain"] = unquote(c.Source().Text[tok.Start:tok.End])
			}
		}
		return r
	}
}

// parseClassName reads `Ident` or `Ident.Ident` (§6 "Namespace.Class").
func parseClassName(c *combinator.Cursor) (name string, rng token.Range, next *combinator.Cursor, ok bool) {
	if c.Current().Kind != token.IDENT {
		return "", token.Range{}, c, false
	}
	first := c.Current()
	rng = first.Range(c.Source())
	name = c.Source().Text[first.Start:first.End]
	cur := c.Advance()
	if cur.Current().Kind == token.OPERATOR && curText(cur) == "." {
		cur = cur.Advance()
		if cur.Current().Kind != token.IDENT {
			return name, rng, cur, true
		}
		second := cur.Current()
		name = name + "." + c.Source().Text[second.Start:second.End]
		rng = rng.Join(second.Range(c.Source()))
		cur = cur.Advance()
	}
	return name, rng, cur, true
}

// parseObject parses `ClassName id? { members… }` (§3, §6).
func parseObject(c *combinator.Cursor, ctx *combinator.Ctx, env *Env) combinator.Result {
	className, classRng, cur, ok := parseClassName(c)
	if !ok {
		return combinator.Result{Status: combinator.StatusFailure}
	}
	obj := &Object{ClassName: className, ClassRng: classRng}
	if cur.Current().Kind == token.IDENT {
		idTok := cur.Current()
		obj.ID = cur.Source().Text[idTok.Start:idTok.End]
		obj.IDRng = idTok.Range(cur.Source())
		cur = cur.Advance()
	}
	if !(cur.Current().Kind == token.LBRACE) {
		return combinator.Result{Status: combinator.StatusFailure}
	}
	openRng := cur.Range()
	cur = cur.Advance()

	incomplete := false
	for {
		if cur.AtEOF() {
			env.Diags.Add(diag.New(diag.ParseError, cur.Range(), "unexpected end of file inside object body, expected '}'"))
			incomplete = true
			break
		}
		if cur.Current().Kind == token.RBRACE {
			break
		}
		m, next, memberOK := parseObjectMember(cur, ctx, env)
		if !memberOK {
			env.Diags.Add(diag.New(diag.ParseError, cur.Range(), "expected a property, signal, or child object"))
			incomplete = true
			cur = cur.Advance()
			continue
		}
		switch v := m.(type) {
		case *Property:
			obj.Properties = append(obj.Properties, v)
		case *Signal:
			obj.Signals = append(obj.Signals, v)
		case *Object:
			obj.Children = append(obj.Children, v)
		}
		cur = next
	}
	endRng := openRng
	if cur.Current().Kind == token.RBRACE {
		endRng = cur.Range()
		cur = cur.Advance()
	} else {
		incomplete = true
	}
	obj.rng = classRng.Join(endRng)
	return wrapNode(cur, obj, incomplete)
}

// parseObjectMember dispatches on lookahead after a leading identifier
// to decide whether it starts a property (`:`), a signal (`::` or
// `=>`), or a nested child object (anything else, including a dotted
// class name or an immediate `{`) — §6's "Objects:" and "Signal:" forms.
func parseObjectMember(c *combinator.Cursor, ctx *combinator.Ctx, env *Env) (any, *combinator.Cursor, bool) {
	if c.Current().Kind != token.IDENT {
		return nil, c, false
	}
	next := peekText(c, 1)
	nextKind := c.Peek(1).Kind
	switch {
	case nextKind == token.OPERATOR && next == ":":
		return parseProperty(c, ctx, env)
	case nextKind == token.OPERATOR && (next == "::" || next == "=>"):
		return parseSignal(c, ctx, env)
	default:
		r := parseObject(c, ctx, env)
		if !r.Ok() {
			return nil, c, false
		}
		return nodeOf(r.Group).(*Object), r.Cursor, true
	}
}

// parseProperty parses `name: value;` or the bind-prefixed forms
// `name: bind expr;` (§4.5 "Property", §6).
func parseProperty(c *combinator.Cursor, ctx *combinator.Ctx, env *Env) (*Property, *combinator.Cursor, bool) {
	nameTok := c.Current()
	name := c.Source().Text[nameTok.Start:nameTok.End]
	nameRng := nameTok.Range(c.Source())
	cur := c.Advance()
	if !(cur.Current().Kind == token.OPERATOR && curText(cur) == ":") {
		return nil, c, false
	}
	cur = cur.Advance()

	prop := &Property{Name: name, NameRng: nameRng}
	if curText(cur) == "bind" {
		prop.Bind = true
		cur = cur.Advance()
	}

	val, next, ok := parseValue(cur, ctx, env)
	if !ok {
		env.Diags.Add(diag.New(diag.ParseError, cur.Range(), fmt.Sprintf("expected a value for property %q", name)))
		return prop, skipToBoundary(cur), true
	}
	prop.Value = val
	cur = next

	if cur.Current().Kind == token.SEMI {
		prop.rng = nameRng.Join(cur.Range())
		cur = cur.Advance()
	} else {
		env.Diags.Add(diag.New(diag.ParseError, cur.Range(), "expected ';'"))
		cur = skipToBoundary(cur)
		prop.rng = nameRng
	}
	return prop, cur, true
}

// parseSignal parses `name(::detail)? => handler() (swapped|after)*;`
// (§3 "Signal", §6).
func parseSignal(c *combinator.Cursor, ctx *combinator.Ctx, env *Env) (*Signal, *combinator.Cursor, bool) {
	nameTok := c.Current()
	sig := &Signal{Name: c.Source().Text[nameTok.Start:nameTok.End], NameRng: nameTok.Range(c.Source())}
	cur := c.Advance()

	if curText(cur) == "::" {
		cur = cur.Advance()
		if cur.Current().Kind == token.IDENT {
			dTok := cur.Current()
			sig.Detail = cur.Source().Text[dTok.Start:dTok.End]
			cur = cur.Advance()
		}
	}
	if !(curText(cur) == "=>") {
		return nil, c, false
	}
	cur = cur.Advance()

	if cur.Current().Kind != token.IDENT {
		env.Diags.Add(diag.New(diag.ParseError, cur.Range(), "expected a signal handler name"))
		return sig, skipToBoundary(cur), true
	}
	hTok := cur.Current()
	sig.Handler = cur.Source().Text[hTok.Start:hTok.End]
	sig.HandlerRng = hTok.Range(cur.Source())
	cur = cur.Advance()

	if cur.Current().Kind == token.LPAREN {
		cur = cur.Advance()
		if cur.Current().Kind != token.RPAREN {
			r := parseObject(cur, ctx, env)
			if r.Ok() {
				sig.Object = nodeOf(r.Group).(*Object)
				cur = r.Cursor
			}
		}
		if cur.Current().Kind == token.RPAREN {
			cur = cur.Advance()
		}
	}

	for cur.Current().Kind == token.IDENT && (curText(cur) == "swapped" || curText(cur) == "after") {
		if curText(cur) == "swapped" {
			sig.Swapped = true
		} else {
			sig.After = true
		}
		cur = cur.Advance()
	}

	if cur.Current().Kind == token.SEMI {
		sig.rng = sig.NameRng.Join(cur.Range())
		cur = cur.Advance()
	} else {
		env.Diags.Add(diag.New(diag.ParseError, cur.Range(), "expected ';'"))
		cur = skipToBoundary(cur)
	}
	return sig, cur, true
}

// parseTemplate parses `template Name (: ParentClass)? { objects… }`
// (§6, glossary "Template").
func parseTemplate(c *combinator.Cursor, ctx *combinator.Ctx, env *Env) combinator.Result {
	if curText(c) != "template" {
		return combinator.Result{Status: combinator.StatusFailure}
	}
	startRng := c.Range()
	cur := c.Advance()
	if cur.Current().Kind != token.IDENT {
		return combinator.Result{Status: combinator.StatusFailure}
	}
	nameTok := cur.Current()
	tmpl := &Template{Name: cur.Source().Text[nameTok.Start:nameTok.End], NameRng: nameTok.Range(cur.Source())}
	cur = cur.Advance()

	if cur.Current().Kind == token.OPERATOR && curText(cur) == ":" {
		cur = cur.Advance()
		name, rng, next, ok := parseClassName(cur)
		if !ok {
			env.Diags.Add(diag.New(diag.ParseError, cur.Range(), "expected a parent class name after ':'"))
		} else {
			tmpl.ForClass = name
			tmpl.ForClassRng = rng
			cur = next
		}
	}

	if cur.Current().Kind != token.LBRACE {
		return combinator.Result{Status: combinator.StatusFailure}
	}
	cur = cur.Advance()

	incomplete := false
	for {
		if cur.AtEOF() {
			incomplete = true
			break
		}
		if cur.Current().Kind == token.RBRACE {
			break
		}
		r := parseObject(cur, ctx, env)
		if !r.Ok() {
			env.Diags.Add(diag.New(diag.ParseError, cur.Range(), "expected an object declaration inside template"))
			incomplete = true
			cur = cur.Advance()
			continue
		}
		tmpl.Objects = append(tmpl.Objects, nodeOf(r.Group).(*Object))
		cur = r.Cursor
	}
	endRng := startRng
	if cur.Current().Kind == token.RBRACE {
		endRng = cur.Range()
		cur = cur.Advance()
	} else {
		incomplete = true
	}
	tmpl.rng = startRng.Join(endRng)
	return wrapNode(cur, tmpl, incomplete)
}

// parseValue parses a Value per §3 "Value variants" / §6 "Property
// values": translated strings, literals, flags-or-ident, pipe-separated
// flags, inline objects, arrays, and `expr <expression>`.
func parseValue(c *combinator.Cursor, ctx *combinator.Ctx, env *Env) (Value, *combinator.Cursor, bool) {
	switch {
	case c.Current().Kind == token.IDENT && curText(c) == "_":
		return parseTranslated(c, false)
	case c.Current().Kind == token.IDENT && curText(c) == "C_":
		return parseTranslated(c, true)
	case c.Current().Kind == token.IDENT && curText(c) == "expr":
		return parseExprValue(c, ctx, env)
	case c.Current().Kind == token.QUOTED:
		tok := c.Current()
		raw := c.Source().Text[tok.Start:tok.End]
		rng := tok.Range(c.Source())
		lit := &Literal{base: base{rng: rng}, Raw: unquote(raw), LitType: types.NewPrimitive(types.PrimString)}
		return lit, c.Advance(), true
	case c.Current().Kind == token.NUMBER:
		tok := c.Current()
		raw := c.Source().Text[tok.Start:tok.End]
		rng := tok.Range(c.Source())
		lit := &Literal{base: base{rng: rng}, Raw: raw, LitType: numberPrimitiveType(raw)}
		return lit, c.Advance(), true
	case c.Current().Kind == token.LBRACKET:
		return parseArrayValue(c, ctx, env)
	case c.Current().Kind == token.IDENT:
		return parseIdentValue(c, ctx, env)
	default:
		return nil, c, false
	}
}

func parseTranslated(c *combinator.Cursor, withContext bool) (Value, *combinator.Cursor, bool) {
	start := c.Range()
	cur := c.Advance()
	if cur.Current().Kind != token.LPAREN {
		return nil, c, false
	}
	cur = cur.Advance()
	ts := &TranslatedString{}
	if withContext {
		if cur.Current().Kind != token.QUOTED {
			return nil, c, false
		}
		ctxTok := cur.Current()
		ts.Context = unquote(cur.Source().Text[ctxTok.Start:ctxTok.End])
		cur = cur.Advance()
		if !(cur.Current().Kind == token.COMMA) {
			return nil, c, false
		}
		cur = cur.Advance()
	}
	if cur.Current().Kind != token.QUOTED {
		return nil, c, false
	}
	textTok := cur.Current()
	ts.Text = unquote(cur.Source().Text[textTok.Start:textTok.End])
	cur = cur.Advance()
	if cur.Current().Kind != token.RPAREN {
		return nil, c, false
	}
	endRng := cur.Range()
	cur = cur.Advance()
	ts.rng = start.Join(endRng)
	return ts, cur, true
}

func parseExprValue(c *combinator.Cursor, ctx *combinator.Ctx, env *Env) (Value, *combinator.Cursor, bool) {
	start := c.Range()
	cur := c.Advance()
	e, next, ok := expr.Parse(cur, ctx, &expr.ParserEnv{Resolver: env})
	if !ok {
		return nil, c, false
	}
	ev := &ExprValue{Expr: e}
	ev.rng = start.Join(e.Range())
	return ev, next, true
}

func parseArrayValue(c *combinator.Cursor, ctx *combinator.Ctx, env *Env) (Value, *combinator.Cursor, bool) {
	start := c.Range()
	cur := c.Advance()
	av := &ArrayValue{}
	if cur.Current().Kind != token.RBRACKET {
		for {
			v, next, ok := parseValue(cur, ctx, env)
			if !ok {
				return nil, c, false
			}
			av.Items = append(av.Items, v)
			cur = next
			if cur.Current().Kind == token.COMMA {
				cur = cur.Advance()
				continue
			}
			break
		}
	}
	if cur.Current().Kind != token.RBRACKET {
		return nil, c, false
	}
	endRng := cur.Range()
	cur = cur.Advance()
	av.rng = start.Join(endRng)
	return av, cur, true
}

// parseIdentValue parses the three bare-identifier-led value forms: a
// single flags-or-ident, a pipe-separated flags combination, or an
// inline object (§3 "Value variants").
func parseIdentValue(c *combinator.Cursor, ctx *combinator.Ctx, env *Env) (Value, *combinator.Cursor, bool) {
	next := c.Peek(1)
	nextText := peekText(c, 1)
	if next.Kind == token.OPERATOR && nextText == "|" {
		var names []string
		var rngs []token.Range
		cur := c
		for {
			if cur.Current().Kind != token.IDENT {
				return nil, c, false
			}
			tok := cur.Current()
			names = append(names, cur.Source().Text[tok.Start:tok.End])
			rngs = append(rngs, tok.Range(cur.Source()))
			cur = cur.Advance()
			if cur.Current().Kind == token.OPERATOR && curText(cur) == "|" {
				cur = cur.Advance()
				continue
			}
			break
		}
		fv := &FlagsValue{Names: names, Rngs: rngs}
		fv.rng = rngs[0].Join(rngs[len(rngs)-1])
		return fv, cur, true
	}
	if next.Kind == token.LBRACE || (next.Kind == token.OPERATOR && nextText == ".") {
		r := parseObject(c, ctx, env)
		if !r.Ok() {
			return nil, c, false
		}
		ov := &ObjectValue{Obj: nodeOf(r.Group).(*Object)}
		ov.rng = ov.Obj.Range()
		return ov, r.Cursor, true
	}
	tok := c.Current()
	fi := &FlagsOrIdent{Name: c.Source().Text[tok.Start:tok.End]}
	fi.rng = tok.Range(c.Source())
	return fi, c.Advance(), true
}

func numberPrimitiveType(raw string) *types.Type {
	raw = strings.TrimLeft(raw, "+-")
	if strings.ContainsAny(raw, ".eE") && !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		return types.NewPrimitive(types.PrimFloat64)
	}
	return types.NewPrimitive(types.PrimInt64)
}

// unquote strips the surrounding quote and resolves the escapes §4.1
// recognizes (\n, \t, \", \', \\).
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	inner := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"', '\'', '\\':
				b.WriteByte(inner[i])
			default:
				b.WriteByte(inner[i])
			}
			continue
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

// skipToBoundary advances past tokens until the next ';' (consumed) or
// '}' (not consumed) or EOF, the same panic-mode recovery combinator.
// Statement applies internally (§4.4/§7).
func skipToBoundary(c *combinator.Cursor) *combinator.Cursor {
	cur := c
	for !cur.AtEOF() && cur.Current().Kind != token.SEMI && cur.Current().Kind != token.RBRACE {
		cur = cur.Advance()
	}
	if cur.Current().Kind == token.SEMI {
		cur = cur.Advance()
	}
	return cur
}
