package scanner

import (
	"fmt"
	"io"
	"sort"

	"github.com/sph-lang/sphinx/lang/token"
)

// Error is a single diagnostic produced by the lexer or parser, carrying a
// resolved human position rather than a bare Pos, so it can be reported after
// the FileSet it came from has gone out of scope. Modeled on go/scanner's
// Error, but implemented natively: token.Position here is specific to this
// module's FileSet, not stdlib go/token's, so the standard library type
// cannot be reused directly.
type Error struct {
	Pos token.Position
	Msg string
}

func (e Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

// ErrorList accumulates Errors across an entire lexing or parsing pass, since
// both components keep going after a synchronization point so the user sees
// every diagnostic from a single run.
type ErrorList []Error

// Add appends a new Error to the list.
func (l *ErrorList) Add(pos token.Position, msg string) {
	*l = append(*l, Error{Pos: pos, Msg: msg})
}

// Sort orders the list by position, so diagnostics are reported in source
// order regardless of the order in which synchronization points ran.
func (l ErrorList) Sort() {
	sort.Slice(l, func(i, j int) bool {
		a, b := l[i].Pos, l[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

func (l ErrorList) Len() int      { return len(l) }
func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
	}
}

// Err returns l as an error if it is non-empty, or nil otherwise. Use this to
// convert an accumulated ErrorList into a function's error return value.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// PrintError prints each error in err to w, one per line. If err is an
// ErrorList, every entry is printed; otherwise err is printed as-is.
func PrintError(w io.Writer, err error) {
	if list, ok := err.(ErrorList); ok {
		for _, e := range list {
			fmt.Fprintf(w, "%s\n", e)
		}
		return
	}
	if err != nil {
		fmt.Fprintf(w, "%s\n", err)
	}
}
