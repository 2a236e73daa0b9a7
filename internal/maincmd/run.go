package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/sph-lang/sphinx/lang/ast"
	"github.com/sph-lang/sphinx/lang/compiler"
	"github.com/sph-lang/sphinx/lang/loader"
	"github.com/sph-lang/sphinx/lang/machine"
	"github.com/sph-lang/sphinx/lang/parser"
	"github.com/sph-lang/sphinx/lang/strtable"
	"github.com/sph-lang/sphinx/lang/token"
)

// run is the frontend's single entry point once flags are parsed: it decides
// between one-shot file/command execution, -P inspection, and the REPL,
// following the flag semantics from the usage text.
func (c *Cmd) run(ctx context.Context, stdio mainer.Stdio) error {
	if len(c.args) == 0 && c.Command == "" {
		return c.repl(ctx, stdio, machine.NewModule(nil))
	}

	fset := token.NewFileSet()
	var (
		ch  *ast.Chunk
		err error
	)
	if c.Command != "" {
		ch, err = parser.ParseChunk(parser.Mode(0), fset, "<cmd>", []byte(c.Command))
	} else {
		var chunks []*ast.Chunk
		fset, chunks, err = parser.ParseFiles(parser.Mode(0), c.args[0])
		if len(chunks) > 0 {
			ch = chunks[0]
		}
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	if c.PrintAST {
		return printAST(stdio, fset, ch)
	}

	if c.Disassemble {
		err := fmt.Errorf("-d is not implemented")
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	module := machine.NewModule(nil)
	if err := c.execChunk(ctx, stdio, fset, ch, module); err != nil {
		return err
	}

	if c.Interactive {
		return c.repl(ctx, stdio, module)
	}
	return nil
}

func printAST(stdio mainer.Stdio, fset *token.FileSet, ch *ast.Chunk) error {
	printer := ast.Printer{Output: stdio.Stdout, Pos: token.PosLong}
	start, _ := ch.Span()
	return printer.Print(ch, fset.File(start))
}

// execChunk compiles and runs one already-parsed chunk against module,
// printing any compile or runtime error to stderr in the frontend's format.
func (c *Cmd) execChunk(ctx context.Context, stdio mainer.Stdio, fset *token.FileSet, ch *ast.Chunk, module *machine.Module) error {
	c.debugf(stdio, "compiling %s", ch.Name)
	interner := strtable.NewTable(32)
	up, err := compiler.CompileChunk(ch, fset, interner)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: compile error: %s\n", ch.Name, err)
		return err
	}

	c.debugf(stdio, "loading %s: %d chunks, %d constants", ch.Name, len(up.Chunks), len(up.Constants))
	prog, err := loader.Load(up, fset)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	c.debugf(stdio, "running %s", ch.Name)
	th := &machine.Thread{Name: ch.Name, Stdout: stdio.Stdout}
	if _, err := th.Run(ctx, prog, module); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", ch.Name, err)
		return err
	}
	return nil
}
