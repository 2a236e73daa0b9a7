package parser

import "github.com/sph-lang/sphinx/lang/token"

// ctxTag names the kind of construct a context frame tracks, so a diagnostic
// can say what it was in the middle of parsing.
type ctxTag int

const (
	ctxExpr ctxTag = iota
	ctxStmt
	ctxBinOp
	ctxPrimary
	ctxTupleCtor
	ctxObjectCtor
	ctxGroup
	ctxBlock
)

// ctxFrame is one entry of the parser's explicit context stack: rather than
// relying on call-stack unwinding to know what the largest enclosing
// construct was, the parser pushes a frame on descent into each of the
// productions above and pops (extending the parent's span) on return.
type ctxFrame struct {
	tag   ctxTag
	start token.Pos
	end   token.Pos
}

func (p *parser) pushCtx(tag ctxTag) {
	p.ctxStack = append(p.ctxStack, ctxFrame{tag: tag, start: p.val.Pos, end: p.val.Pos})
}

// popCtx removes the top frame and extends the new top frame's end to cover
// it, so that an error raised in an outer context still spans every nested
// construct that completed inside it.
func (p *parser) popCtx(end token.Pos) {
	n := len(p.ctxStack)
	f := p.ctxStack[n-1]
	f.end = end
	p.ctxStack = p.ctxStack[:n-1]
	if n > 1 {
		top := &p.ctxStack[n-2]
		if f.start < top.start {
			top.start = f.start
		}
		if f.end > top.end {
			top.end = f.end
		}
	}
}

// curCtxSpan returns the span of the currently active (innermost) context
// frame, or (pos, pos) if the stack is empty.
func (p *parser) curCtxSpan(pos token.Pos) (token.Pos, token.Pos) {
	if len(p.ctxStack) == 0 {
		return pos, pos
	}
	f := p.ctxStack[len(p.ctxStack)-1]
	start, end := f.start, f.end
	if pos < start {
		start = pos
	}
	if pos > end {
		end = pos
	}
	return start, end
}
