package portal

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/nerrad567/camportal/internal/infrastructure/logging"
)

// reply is one scripted transport outcome.
type reply struct {
	status int
	body   string
	err    error
}

// fakeTransport records requests and answers from a script keyed by
// "METHOD path". When release is non-nil, Do blocks until it is closed.
type fakeTransport struct {
	mu       sync.Mutex
	replies  map[string]reply
	requests []recordedRequest
	started  chan struct{}
	release  chan struct{}
}

type recordedRequest struct {
	Method  string
	Path    string
	Body    string
	HasBody bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{replies: make(map[string]reply), started: make(chan struct{}, 16)}
}

func (f *fakeTransport) on(method, path string, r reply) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[method+" "+path] = r
	return f
}

func (f *fakeTransport) Do(ctx context.Context, req Request) (*Response, error) {
	rec := recordedRequest{Method: req.Method, Path: req.Path}
	if req.Form != nil {
		rec.Body = req.Form.Encode()
		rec.HasBody = true
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	r, ok := f.replies[req.Method+" "+req.Path]
	release := f.release
	f.mu.Unlock()

	select {
	case f.started <- struct{}{}:
	default:
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
		}
	}

	if !ok {
		return &Response{StatusCode: 404, Body: "Not found"}, nil
	}
	if r.err != nil {
		return nil, r.err
	}
	return &Response{StatusCode: r.status, Body: r.body}, nil
}

func (f *fakeTransport) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

// fakeView records everything written to the page.
type fakeView struct {
	mu        sync.Mutex
	responses []string
	alerts    []string
	busy      []string
}

func (v *fakeView) ShowResponse(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.responses = append(v.responses, text)
}

func (v *fakeView) Alert(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, message)
}

func (v *fakeView) SetBusy(control Control, busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busy = append(v.busy, fmt.Sprintf("%s=%t", control, busy))
}

func (v *fakeView) snapshot() (responses, alerts, busy []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.responses...),
		append([]string(nil), v.alerts...),
		append([]string(nil), v.busy...)
}

// fakeNavigator records navigation targets.
type fakeNavigator struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (n *fakeNavigator) Navigate(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.paths = append(n.paths, path)
	return nil
}

func (n *fakeNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// fixture bundles a page with its fakes.
type fixture struct {
	transport *fakeTransport
	view      *fakeView
	nav       *fakeNavigator
}

func newFixture() *fixture {
	return &fixture{transport: newFakeTransport(), view: &fakeView{}, nav: &fakeNavigator{}}
}

func (f *fixture) page() Page {
	return Page{Transport: f.transport, View: f.view, Navigator: f.nav, Logger: logging.Discard()}
}

func equalStrings(t *testing.T, what string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s = %q, want %q", what, got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s = %q, want %q", what, got, want)
			return
		}
	}
}

var errNetwork = fmt.Errorf("%w: dial tcp 192.168.4.1:8080: connection refused", ErrTransport)
