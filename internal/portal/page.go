package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/nerrad567/camportal/internal/infrastructure/logging"
)

// User-facing texts.
const (
	// GenericError is shown whenever a request fails to complete.
	GenericError = "An error occurred. Please try again."

	// AlertTokenMgmtRefused is raised when the token management page is unreachable.
	AlertTokenMgmtRefused = "Failed to navigate to Token Management. Please try again."

	// AlertBackRefused is raised when the provisioning page is unreachable.
	AlertBackRefused = "Failed to navigate back. Please try again."
)

// Portal paths.
const (
	PathRoot            = "/"
	PathSubmit          = "/submit"
	PathQuit            = "/quit"
	PathTokenMgmt       = "/token_mgmt/"
	PathTokenMgmtSubmit = "/token_mgmt/submit"
	PathStream          = "/stream/"
)

// Field reads the current value of a form input.
type Field interface {
	Value() string
}

// FieldFunc adapts a function to Field.
type FieldFunc func() string

// Value calls f.
func (f FieldFunc) Value() string { return f() }

// Text is a Field with a fixed value.
type Text string

// Value returns t.
func (t Text) Value() string { return string(t) }

// Control names an activatable element of a page.
type Control string

// Controls.
const (
	ControlSubmit    Control = "submit"
	ControlTokenMgmt Control = "token_mgmt"
	ControlQuit      Control = "quit"
	ControlBack      Control = "back"
)

// View is the part of a page a controller writes to.
type View interface {
	// ShowResponse replaces the text of the page's response element.
	ShowResponse(text string)

	// Alert raises a modal message.
	Alert(message string)

	// SetBusy enables or disables a control while its request is in flight.
	SetBusy(control Control, busy bool)
}

// Navigator moves the front end to another page of the same portal.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Page holds the collaborators shared by every controller.
type Page struct {
	Transport Transport
	View      View
	Navigator Navigator
	Logger    *logging.Logger // defaults to logging.Default()
}

// State is a controller's position in its page state machine.
type State int

// States. Provisioning and token management move between Idle,
// Submitting, Responded and Failed; the stream gate ends a submission in
// Unlocked or Locked instead.
const (
	StateIdle State = iota
	StateSubmitting
	StateResponded
	StateFailed
	StateUnlocked
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateResponded:
		return "responded"
	case StateFailed:
		return "failed"
	case StateUnlocked:
		return "unlocked"
	case StateLocked:
		return "locked"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// surface selects where a failure is shown.
type surface int

const (
	inline surface = iota // the response element
	modal                 // an alert
)

// controller is embedded by every page controller.
type controller struct {
	name      string
	transport Transport
	view      View
	navigator Navigator
	logger    *logging.Logger

	mu       sync.Mutex
	inFlight map[Control]bool
	state    State
}

func newController(name string, p Page) (*controller, error) {
	switch {
	case p.Transport == nil:
		return nil, fmt.Errorf("%w: transport", ErrMissingDependency)
	case p.View == nil:
		return nil, fmt.Errorf("%w: view", ErrMissingDependency)
	case p.Navigator == nil:
		return nil, fmt.Errorf("%w: navigator", ErrMissingDependency)
	}

	logger := p.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &controller{
		name:      name,
		transport: p.Transport,
		view:      p.View,
		navigator: p.Navigator,
		logger:    logger.With("component", "portal", "page", name),
		inFlight:  make(map[Control]bool),
	}, nil
}

// State returns the current state.
func (c *controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// guard runs fn with control marked busy. It returns ErrBusy, without
// calling fn, while an earlier activation of the same control is in flight.
func (c *controller) guard(control Control, fn func() error) error {
	c.mu.Lock()
	if c.inFlight[control] {
		c.mu.Unlock()
		return ErrBusy
	}
	c.inFlight[control] = true
	c.mu.Unlock()

	c.view.SetBusy(control, true)
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, control)
		c.mu.Unlock()
		c.view.SetBusy(control, false)
	}()

	return fn()
}

// submit posts form to path and displays the answer verbatim whatever its
// status. A transport failure shows GenericError instead.
func (c *controller) submit(ctx context.Context, op, path string, form *Form) error {
	c.setState(StateSubmitting)

	resp, err := c.transport.Do(ctx, Request{Method: http.MethodPost, Path: path, Form: form})
	if err != nil {
		c.setState(StateFailed)
		return c.reportFailure(op, inline, GenericError, err)
	}

	c.logger.Debug("response received", "op", op, "status", resp.StatusCode)
	c.setState(StateResponded)
	c.view.ShowResponse(resp.Body)
	return nil
}

// probeAndNavigate checks that path is reachable and only then navigates
// to it. A non-2xx probe raises refusedAlert; a transport failure raises
// GenericError. Neither navigates.
func (c *controller) probeAndNavigate(ctx context.Context, op, path, refusedAlert string) error {
	resp, err := c.transport.Do(ctx, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return c.reportFailure(op, modal, GenericError, err)
	}
	if !resp.OK() {
		return c.reportFailure(op, modal, refusedAlert,
			fmt.Errorf("%w: GET %s answered %d", ErrNavigationRefused, path, resp.StatusCode))
	}

	if err := c.navigator.Navigate(ctx, path); err != nil {
		return c.reportFailure(op, modal, GenericError, err)
	}
	return nil
}

// reportFailure is the single path by which a failure reaches the user and
// the log. It shows message on the given surface, logs err and returns it.
// Transport failures log at error level, refusals at warn.
func (c *controller) reportFailure(op string, where surface, message string, err error) error {
	if errors.Is(err, ErrTransport) {
		c.logger.Error("request failed", "op", op, "error", err)
	} else {
		c.logger.Warn("request refused", "op", op, "error", err)
	}

	switch where {
	case modal:
		c.view.Alert(message)
	default:
		c.view.ShowResponse(message)
	}
	return err
}
