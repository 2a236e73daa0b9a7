package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/mna/mainer"
	"github.com/sph-lang/sphinx/lang/ast"
	"github.com/sph-lang/sphinx/lang/machine"
	"github.com/sph-lang/sphinx/lang/parser"
	"github.com/sph-lang/sphinx/lang/token"
)

const (
	replPrompt   = ">>> "
	replContinue = "... "
)

// repl runs the read-eval-print loop against module, which is reused across
// submissions so top-level bindings persist. Each submission is parsed and
// compiled as its own chunk, named "<stdin>", sharing nothing with prior
// submissions except module's globals.
func (c *Cmd) repl(ctx context.Context, stdio mainer.Stdio, module *machine.Module) error {
	scanner := bufio.NewScanner(stdio.Stdin)
	var buf strings.Builder

	prompt := func() {
		if buf.Len() == 0 {
			fmt.Fprint(stdio.Stdout, replPrompt)
		} else {
			fmt.Fprint(stdio.Stdout, replContinue)
		}
	}

	prompt()
	for scanner.Scan() {
		line := scanner.Text()

		if buf.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "quit" || trimmed == "\x04" {
				return nil
			}
		}

		emptyAfterContent := strings.TrimSpace(line) == "" && buf.Len() > 0

		buf.WriteString(line)
		buf.WriteByte('\n')

		src := buf.String()
		fset := token.NewFileSet()
		ch, err := parser.ParseChunk(parser.Mode(0), fset, "<stdin>", []byte(src))

		switch {
		case err == nil:
			rewriteTrailingExprAsEcho(ch)
			c.execChunk(ctx, stdio, fset, ch, module)
			buf.Reset()
		case emptyAfterContent:
			// The buffer will never complete on its own (e.g. a forgotten
			// closing brace); surface the parse error instead of waiting
			// for more input that will never resolve it.
			fmt.Fprintln(stdio.Stderr, err)
			buf.Reset()
		}

		prompt()
	}
	fmt.Fprintln(stdio.Stdout)
	return nil
}

// rewriteTrailingExprAsEcho turns a trailing bare expression statement into
// an echo statement, so a REPL submission like `1 + 1` prints its value the
// way a file or -c script never would (there, a bare expression's result is
// simply discarded).
func rewriteTrailingExprAsEcho(ch *ast.Chunk) {
	n := len(ch.Stmts)
	if n == 0 {
		return
	}
	if es, ok := ch.Stmts[n-1].(*ast.ExprStmt); ok {
		ch.Stmts[n-1] = &ast.EchoStmt{X: es.X, DebugSymbol: es.DebugSymbol}
	}
}
