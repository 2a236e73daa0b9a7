// Package scanner implements the Sphinx lexer: a rule-based scanner that
// holds a bag of small state machines (rule), feeds them one character at a
// time, and narrows to the longest unambiguous match.
package scanner

import (
	"github.com/sph-lang/sphinx/lang/token"
)

// ErrorHandler is called with the position and message of every lexical
// error encountered; the scanner never stops on an error, it reports ILLEGAL
// and keeps going, since diagnostics accumulate across the whole pass.
type ErrorHandler func(pos token.Position, msg string)

// Scanner converts a byte buffer already registered with a token.File into a
// stream of tokens.
type Scanner struct {
	file *token.File
	src  []byte
	err  ErrorHandler

	off   int // current byte offset into src
	rdOff int // next byte offset to read
	ch    rune
	atEOF bool

	rules []rule
}

// Init prepares s to scan src, which must be exactly the content previously
// registered with file (same length). Errors are reported through err.
func (s *Scanner) Init(file *token.File, src []byte, err ErrorHandler) {
	s.file = file
	s.src = src
	s.err = err
	s.off = 0
	s.rdOff = 0
	s.atEOF = false
	s.rules = []rule{&identRule{}, &numberRule{}, &stringRule{}, &operatorRule{}}
	s.next()
}

func (s *Scanner) next() {
	if s.rdOff >= len(s.src) {
		s.off = len(s.src)
		s.atEOF = true
		s.ch = -1
		return
	}
	s.off = s.rdOff
	c := rune(s.src[s.rdOff])
	if c < 0x80 {
		s.rdOff++
		s.ch = c
		return
	}
	r, size := decodeRune(s.src[s.rdOff:])
	s.rdOff += size
	s.ch = r
}

func decodeRune(b []byte) (rune, int) {
	for size := 1; size <= 4 && size <= len(b); size++ {
		r := []rune(string(b[:size]))
		if len(r) == 1 && r[0] != 0xFFFD {
			return r[0], size
		}
	}
	return rune(b[0]), 1
}

func (s *Scanner) errorf(pos token.Pos, msg string) {
	if s.err != nil {
		s.err(s.file.Position(pos), msg)
	}
}

// Scan returns the next token, filling val with its payload. At end of input
// it repeatedly returns token.EOF.
func (s *Scanner) Scan(val *token.Value) token.Token {
	// 1. skip leading whitespace, tracking newlines for the File's line table.
	for !s.atEOF && isWhitespace(s.ch) {
		if s.ch == '\n' {
			s.file.AddLine(s.off + 1)
		}
		s.next()
	}

	startOff := s.off
	startPos := s.file.Pos(startOff)

	// 2. at end of input, emit EOF.
	if s.atEOF {
		val.Pos = startPos
		val.EndPos = startPos
		val.Line = s.file.Position(startPos).Line
		return token.EOF
	}

	prev := rune(-1)
	if startOff > 0 {
		prev = rune(s.src[startOff-1])
	}

	live := make([]rule, len(s.rules))
	copy(live, s.rules)
	for _, r := range live {
		r.reset(prev)
	}

	var lastComplete []rule
	lastCompleteOff := startOff

	for {
		if s.atEOF {
			break
		}
		c := s.ch
		var next []rule
		var completeThisRound []rule
		for _, r := range live {
			switch r.feed(c) {
			case completeMatch:
				next = append(next, r)
				completeThisRound = append(completeThisRound, r)
			case incompleteMatch:
				next = append(next, r)
			case noMatch:
				// dropped
			}
		}
		if len(next) == 0 {
			break
		}
		live = next
		s.next()
		if len(completeThisRound) > 0 {
			lastComplete = completeThisRound
			lastCompleteOff = s.off
		}
		if len(live) == 1 {
			return s.exhaust(live[0], startOff, startPos, val)
		}
	}

	return s.resolve(lastComplete, startOff, lastCompleteOff, startPos, val)
}

// exhaust implements step 5: once exactly one rule remains live, keep
// peeking and feeding it (advancing only on acceptance) until it rejects,
// then emit using whatever it accumulated.
func (s *Scanner) exhaust(r rule, startOff int, startPos token.Pos, val *token.Value) token.Token {
	for !s.atEOF {
		st := r.feed(s.ch)
		if st == noMatch {
			break
		}
		s.next()
	}
	raw := string(s.src[startOff:s.off])
	return s.finishToken(r, raw, startPos, val)
}

// resolve implements step 4's termination when the live set became empty:
// pick from whichever rules completed most recently.
func (s *Scanner) resolve(lastComplete []rule, startOff, lastCompleteOff int, startPos token.Pos, val *token.Value) token.Token {
	switch len(lastComplete) {
	case 0:
		badOff := startOff
		s.next() // consume one char as ILLEGAL so the scanner always makes progress
		if s.off == badOff {
			s.next()
		}
		raw := string(s.src[startOff:s.off])
		s.errorf(startPos, "could not parse symbol "+quoteRaw(raw))
		val.Pos = startPos
		val.EndPos = s.file.Pos(s.off)
		val.Line = s.file.Position(val.EndPos).Line
		val.Raw = raw
		return token.ILLEGAL
	case 1:
		raw := string(s.src[startOff:lastCompleteOff])
		s.rewindTo(lastCompleteOff)
		return s.finishToken(lastComplete[0], raw, startPos, val)
	default:
		raw := string(s.src[startOff:lastCompleteOff])
		s.errorf(startPos, "ambiguous symbol "+quoteRaw(raw))
		s.rewindTo(lastCompleteOff)
		return s.finishToken(lastComplete[0], raw, startPos, val)
	}
}

// rewindTo repositions the scanner so the next Scan call starts at byte
// offset target, used when the live set died one or more characters past the
// longest complete match (the scanner over-read while probing for a longer
// token before the rules gave out).
func (s *Scanner) rewindTo(target int) {
	if target == s.off {
		return
	}
	s.off = target
	s.atEOF = target >= len(s.src)
	if !s.atEOF {
		s.ch = rune(s.src[target])
		s.rdOff = target + 1
	} else {
		s.ch = -1
		s.rdOff = target
	}
}

func (s *Scanner) finishToken(r rule, raw string, startPos token.Pos, val *token.Value) token.Token {
	tok := r.finish(raw, val)
	val.Pos = startPos
	endPos := s.file.Pos(s.file.Offset(startPos) + len(raw))
	val.EndPos = endPos
	val.Line = s.file.Position(endPos).Line
	return tok
}

func isWhitespace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func quoteRaw(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + s + "'"
}
