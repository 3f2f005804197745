package render

import (
	"fmt"
	"strconv"
)

// Renderable is a value a page may write into a Destination.
//
// The set of implementations is closed: Text, SafeHTML, Binary, Sequence,
// AsyncSequence, SubRender, and Empty. Keeping the set closed makes the
// escaping rules exhaustive instead of relying on runtime type sniffing.
type Renderable interface {
	renderable()
}

// Text is plain text; it is HTML-escaped when written.
type Text string

// SafeHTML is trusted markup written without escaping. Only the component
// compiler should produce these for literal template output.
type SafeHTML string

// Binary is a raw byte chunk written without escaping (binary endpoint
// bodies, pre-encoded fragments).
type Binary []byte

// Sequence is an ordered list of children flattened depth-first.
// Nil entries are dropped.
type Sequence []Renderable

// AsyncSequence is a stream of children produced by concurrent work.
// The destination drains it sequentially so document order is preserved
// even when producers finish out of order.
type AsyncSequence <-chan Renderable

// SubRender is a nested render callback, used for sub-components that
// write directly into the destination.
type SubRender func(*Destination) error

type empty struct{}

// Empty renders nothing. Dropped values (nil, false) normalize to it.
var Empty Renderable = empty{}

func (Text) renderable()          {}
func (SafeHTML) renderable()      {}
func (Binary) renderable()        {}
func (Sequence) renderable()      {}
func (AsyncSequence) renderable() {}
func (SubRender) renderable()     {}
func (empty) renderable()         {}

// Value normalizes interpolated page data into a Renderable.
//
// nil and false render nothing. Zero is a valid rendered value and is
// emitted as "0"; only falsy-but-not-zero values are filtered.
func Value(v any) Renderable {
	switch x := v.(type) {
	case nil:
		return Empty
	case Renderable:
		return x
	case string:
		return Text(x)
	case bool:
		if !x {
			return Empty
		}
		return Text("true")
	case int:
		return Text(strconv.Itoa(x))
	case int64:
		return Text(strconv.FormatInt(x, 10))
	case float64:
		return Text(strconv.FormatFloat(x, 'g', -1, 64))
	case []byte:
		return Binary(x)
	case []any:
		seq := make(Sequence, 0, len(x))
		for _, child := range x {
			seq = append(seq, Value(child))
		}
		return seq
	case fmt.Stringer:
		return Text(x.String())
	default:
		return Text(fmt.Sprint(x))
	}
}
