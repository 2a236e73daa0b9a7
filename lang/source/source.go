// Package source reads the bytes the scanner operates over, giving I/O
// failures a single uniform error kind regardless of where the source text
// came from.
package source

import (
	"fmt"
	"os"
)

// Error wraps any failure encountered while reading source, giving it a
// single, uniform kind as required by the source-I/O error family.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("source %s: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("source: %s", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ReadAll reads the entire contents of path, wrapping any error in *Error.
// The scanner works directly over the returned byte slice: with a single
// compilation unit per run and no multi-gigabyte scripts to stream, reading
// the whole file upfront is simpler than a lazy rune-at-a-time reader and
// lets the same byte slice back the token.FileSet's span arithmetic.
func ReadAll(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return b, nil
}
