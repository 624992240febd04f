package pdf

import (
	"context"
	"io"
	"strings"
)

// Stack is the PostScript-style operand stack passed to a content-stream
// or CMap resource operator callback: operands accumulate on it until an
// operator keyword is reached, at which point the callback pops its own
// arguments back off in the order they were pushed.
type Stack struct {
	stk []Value
}

// Push adds v to the top of the stack.
func (s *Stack) Push(v Value) {
	s.stk = append(s.stk, v)
}

// Pop removes and returns the top of the stack.
// Popping an empty stack returns the null Value.
func (s *Stack) Pop() Value {
	n := len(s.stk)
	if n == 0 {
		return Value{}
	}
	v := s.stk[n-1]
	s.stk = s.stk[:n-1]
	return v
}

// Len returns the number of operands currently on the stack.
func (s *Stack) Len() int {
	return len(s.stk)
}

// Interpret tokenizes strm as a PDF content stream (or resource, such as an
// embedded CMap) and calls do once per operator, with the stack holding
// that operator's operands.
func Interpret(strm Value, do func(stk *Stack, op string)) {
	InterpretWithContext(context.Background(), strm, do)
}

// InterpretWithContext is Interpret with a context for cancellation; ctx is
// checked periodically so a caller can bound interpretation of a
// pathological or hostile content stream.
func InterpretWithContext(ctx context.Context, strm Value, do func(stk *Stack, op string)) {
	if ctx == nil {
		ctx = context.Background()
	}
	rd := contentReader(strm)
	if rd == nil {
		return
	}

	b := newBuffer(rd, 0)
	b.allowEOF = true
	defer PutPDFBuffer(b)

	checker := newContextChecker(ctx, 1000)
	var stk Stack
	for {
		if checker.Check() {
			return
		}
		tok := b.readToken()
		if tok == nil || tok == io.EOF {
			return
		}
		kw, isKeyword := tok.(keyword)
		if !isKeyword {
			stk.Push(Value{data: tok})
			continue
		}
		switch kw {
		case "<<":
			stk.Push(Value{data: b.readDict()})
		case "[":
			stk.Push(Value{data: b.readArray()})
		case ">>", "]":
			// Stray closing delimiter; nothing to do.
		default:
			do(&stk, string(kw))
		}
	}
}

// contentReader concatenates a page's /Contents into a single byte stream.
// Per ISO 32000-1 §7.8.2, an array of content streams is logically one
// stream with the individual streams joined by whitespace, so that a
// token never ends up split across two array elements.
func contentReader(strm Value) io.Reader {
	switch strm.Kind() {
	case Stream:
		return strm.Reader()
	case String:
		return strings.NewReader(strm.RawString())
	case Array:
		n := strm.Len()
		readers := make([]io.Reader, 0, 2*n)
		for i := 0; i < n; i++ {
			el := strm.Index(i)
			if el.Kind() != Stream {
				continue
			}
			readers = append(readers, el.Reader(), strings.NewReader("\n"))
		}
		if len(readers) == 0 {
			return nil
		}
		return io.MultiReader(readers...)
	default:
		return nil
	}
}
