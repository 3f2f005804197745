package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Destination is the sink pages write HTML fragments into.
//
// Two backing modes exist: buffering, which accumulates everything into an
// in-memory buffer (static generation and non-streaming adapters), and
// streaming, which pushes chunks to the live transport as they are
// produced. Writers never see the difference; the facade picks the mode.
type Destination struct {
	ctx       context.Context
	buf       bytes.Buffer
	w         io.Writer
	flusher   http.Flusher
	streaming bool
	started   bool
	resp      *Response
	onFirst   func(*Response)
}

// NewBufferedDestination creates an in-memory destination.
func NewBufferedDestination() *Destination {
	return &Destination{ctx: context.Background()}
}

// NewStreamingDestination creates a destination that writes straight to
// the live transport. onFirst runs before the first chunk is written,
// giving the caller a chance to flush status and headers; after it runs
// the bound response is sealed.
func NewStreamingDestination(ctx context.Context, w io.Writer, onFirst func(*Response)) *Destination {
	flusher, _ := w.(http.Flusher)
	if ctx == nil {
		ctx = context.Background()
	}
	return &Destination{
		ctx:       ctx,
		w:         w,
		flusher:   flusher,
		streaming: true,
		onFirst:   onFirst,
	}
}

// Bind associates the response whose headers accompany the first chunk.
func (d *Destination) Bind(resp *Response) {
	d.resp = resp
}

// Started reports whether any output has been produced.
func (d *Destination) Started() bool {
	return d.started
}

// Buffered returns the accumulated output of a buffering destination.
func (d *Destination) Buffered() []byte {
	return d.buf.Bytes()
}

// Write enqueues a chunk. Nested sequences are flattened depth-first so
// document order is preserved; nil and Empty children are dropped.
func (d *Destination) Write(chunk Renderable) error {
	switch v := chunk.(type) {
	case nil, empty:
		return nil
	case Text:
		return d.writeString(EscapeHTML(string(v)))
	case SafeHTML:
		return d.writeString(string(v))
	case Binary:
		return d.writeBytes([]byte(v))
	case Sequence:
		for _, child := range v {
			if err := d.Write(child); err != nil {
				return err
			}
		}
		return nil
	case AsyncSequence:
		// Sequential drain: children are awaited in order, never fanned
		// out, so chunks reach the transport in document order.
		for child := range v {
			if err := d.Write(child); err != nil {
				return err
			}
		}
		return nil
	case SubRender:
		return v(d)
	default:
		return fmt.Errorf("unknown renderable %T", chunk)
	}
}

func (d *Destination) writeString(s string) error {
	if s == "" {
		return nil
	}
	return d.writeBytes([]byte(s))
}

func (d *Destination) writeBytes(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if !d.streaming {
		d.started = true
		d.buf.Write(b)
		return nil
	}

	// Transport gone: later writes are best-effort no-ops, not crashes.
	if d.ctx.Err() != nil {
		return nil
	}

	if !d.started {
		d.started = true
		if d.onFirst != nil {
			d.onFirst(d.resp)
		}
		if d.resp != nil {
			d.resp.MarkSent()
		}
	}

	if _, err := d.w.Write(b); err != nil {
		// The connection closed mid-write; treat as best-effort.
		return nil
	}
	if d.flusher != nil {
		d.flusher.Flush()
	}
	return nil
}
