package render

import (
	"bytes"
	"context"
	"testing"
)

func TestDestination_EscapesPlainText(t *testing.T) {
	dest := NewBufferedDestination()
	if err := dest.Write(Text(`<script>alert("hi") & 'bye'</script>`)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := "&lt;script&gt;alert(&quot;hi&quot;) &amp; &#39;bye&#39;&lt;/script&gt;"
	if got := string(dest.Buffered()); got != want {
		t.Fatalf("buffered = %q, want %q", got, want)
	}
}

func TestDestination_SafeHTMLPassesThrough(t *testing.T) {
	dest := NewBufferedDestination()
	dest.Write(SafeHTML("<h1>Title</h1>"))

	if got := string(dest.Buffered()); got != "<h1>Title</h1>" {
		t.Fatalf("buffered = %q", got)
	}
}

func TestDestination_SequenceFlattensDepthFirst(t *testing.T) {
	dest := NewBufferedDestination()
	dest.Write(Sequence{
		Text("a"),
		Sequence{Text("b"), Sequence{Text("c")}, nil},
		Empty,
		Text("d"),
	})

	if got := string(dest.Buffered()); got != "abcd" {
		t.Fatalf("buffered = %q, want abcd", got)
	}
}

func TestDestination_AsyncSequencePreservesOrder(t *testing.T) {
	ch := make(chan Renderable, 3)
	ch <- Text("1")
	ch <- Text("2")
	ch <- Text("3")
	close(ch)

	dest := NewBufferedDestination()
	dest.Write(AsyncSequence(ch))

	if got := string(dest.Buffered()); got != "123" {
		t.Fatalf("buffered = %q, want 123", got)
	}
}

func TestDestination_SubRender(t *testing.T) {
	dest := NewBufferedDestination()
	dest.Write(Sequence{
		SafeHTML("<ul>"),
		SubRender(func(d *Destination) error {
			return d.Write(SafeHTML("<li>one</li>"))
		}),
		SafeHTML("</ul>"),
	})

	if got := string(dest.Buffered()); got != "<ul><li>one</li></ul>" {
		t.Fatalf("buffered = %q", got)
	}
}

func TestValue_FalsyFiltering(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"zero is emitted", 0, "0"},
		{"false is dropped", false, ""},
		{"nil is dropped", nil, ""},
		{"true renders", true, "true"},
		{"string renders", "hi", "hi"},
		{"float renders", 2.5, "2.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dest := NewBufferedDestination()
			if err := dest.Write(Value(tc.in)); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if got := string(dest.Buffered()); got != tc.want {
				t.Fatalf("buffered = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStreamingDestination_MarksResponseSentOnFirstChunk(t *testing.T) {
	var buf bytes.Buffer
	var first int
	dest := NewStreamingDestination(context.Background(), &buf, func(resp *Response) {
		first++
	})
	resp := NewResponse(200)
	dest.Bind(resp)

	if resp.Sent() {
		t.Fatal("response should not be sent before any write")
	}

	dest.Write(Text("hello"))
	dest.Write(Text(" world"))

	if first != 1 {
		t.Fatalf("onFirst ran %d times, want 1", first)
	}
	if !resp.Sent() {
		t.Fatal("response should be sent after first chunk")
	}
	if got := buf.String(); got != "hello world" {
		t.Fatalf("transport = %q", got)
	}
}

func TestStreamingDestination_ClosedTransportDropsWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	dest := NewStreamingDestination(ctx, &buf, nil)

	dest.Write(Text("before"))
	cancel()
	if err := dest.Write(Text("after")); err != nil {
		t.Fatalf("write after close should be a no-op, got %v", err)
	}

	if got := buf.String(); got != "before" {
		t.Fatalf("transport = %q, want only pre-close output", got)
	}
}

func TestEscapeAttr_Whitespace(t *testing.T) {
	got := EscapeAttr("a\nb\"c")
	if got != "a&#10;b&quot;c" {
		t.Fatalf("EscapeAttr = %q", got)
	}
}
