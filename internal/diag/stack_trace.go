package diag

import (
	"fmt"
	"strings"

	"github.com/uidl-lang/uidlc/internal/token"
)

// Frame is one entry in a CompilerBug's call stack, adapted from the
// teacher's StackFrame/StackTrace (internal/errors/stack_trace.go) to
// carry a token.Position instead of a lexer.Position.
type Frame struct {
	FunctionName string
	Position     token.Position
}

func (f Frame) String() string {
	return fmt.Sprintf("%s [line: %d, column: %d]", f.FunctionName, f.Position.Line, f.Position.Column)
}

// Trace is a sequence of frames ordered oldest-first, matching the
// teacher's StackTrace ordering.
type Trace []Frame

// String renders the trace most-recent-first, as CLI output expects.
func (t Trace) String() string {
	if len(t) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(t) - 1; i >= 0; i-- {
		sb.WriteString(t[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// NewCompilerBug builds an InternalInvariant diagnostic carrying a
// stack trace and the "please report" hint §7 requires.
func NewCompilerBug(r token.Range, message string, trace Trace) *Diagnostic {
	d := New(InternalInvariant, r, message)
	if s := trace.String(); s != "" {
		d.WithHint("stack trace:\n" + s)
	}
	return d.WithHint("this is a compiler bug — please report it with a reproduction sample")
}
