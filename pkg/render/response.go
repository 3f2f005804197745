package render

import (
	"net/http"
	"sync"

	"github.com/strataframe/strata/internal/errors"
)

// ErrAlreadySent reports an attempt to read or mutate a response whose body
// has begun streaming to the transport.
var ErrAlreadySent error = errors.New("S301")

// State tracks a single render through its lifecycle.
type State int

const (
	// StateNotStarted means no handler has produced output yet.
	StateNotStarted State = iota

	// StateRendering means the handler is producing output.
	StateRendering

	// StateCompleted means the full body is buffered and still mutable
	// until written to a transport.
	StateCompleted

	// StateSent means the first body byte was flushed to the real
	// transport; the response is sealed.
	StateSent

	// StateFailed means the handler returned an error.
	StateFailed
)

// Response is the result of rendering a route.
//
// Unlike http.ResponseWriter it is a value the pipeline can still inspect
// and re-route (404/500 fallback substitution) until it is sent. The sent
// marker models a live streamed response whose underlying connection is no
// longer buffer-backed.
type Response struct {
	mu     sync.Mutex
	status int
	header http.Header
	body   []byte
	state  State
}

// NewResponse creates a mutable response with the given status.
func NewResponse(status int) *Response {
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{
		status: status,
		header: make(http.Header),
		state:  StateNotStarted,
	}
}

// Redirect creates a response carrying a Location header.
func Redirect(location string, status int) *Response {
	resp := NewResponse(status)
	resp.header.Set("Location", location)
	resp.state = StateCompleted
	return resp
}

// Status returns the response status code.
func (r *Response) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// SetStatus changes the status code. It fails once the response is sent.
func (r *Response) SetStatus(code int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateSent {
		return ErrAlreadySent
	}
	r.status = code
	return nil
}

// Header returns the header map. Mutating it after the response has been
// sent has no effect on the transport; use SetHeader to get an error
// instead of a silent no-op.
func (r *Response) Header() http.Header {
	return r.header
}

// SetHeader sets a header value. It fails once the response is sent.
func (r *Response) SetHeader(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateSent {
		return ErrAlreadySent
	}
	r.header.Set(key, value)
	return nil
}

// SetBody stores the buffered body and completes the render.
func (r *Response) SetBody(body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateSent {
		return ErrAlreadySent
	}
	r.body = body
	r.state = StateCompleted
	return nil
}

// Bytes returns the buffered body. Re-reading a sent response fails with
// ErrAlreadySent rather than returning partial content.
func (r *Response) Bytes() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateSent {
		return nil, ErrAlreadySent
	}
	return r.body, nil
}

// Text returns the buffered body as a string, with the same sent-state
// guarantee as Bytes.
func (r *Response) Text() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MarkSent seals the response. Called when the first body byte reaches
// the transport.
func (r *Response) MarkSent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateSent
}

// MarkFailed records a handler failure.
func (r *Response) MarkFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateSent {
		r.state = StateFailed
	}
}

// State returns the current lifecycle state.
func (r *Response) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Sent reports whether the response body has begun streaming.
func (r *Response) Sent() bool {
	return r.State() == StateSent
}

// IsRedirect reports whether the status is a 3xx code.
func (r *Response) IsRedirect() bool {
	s := r.Status()
	return s >= 300 && s < 400
}
