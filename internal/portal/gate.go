package portal

import (
	"context"
	"fmt"
	"net/http"
)

// StreamGateController drives the stream gate page.
//
// State machine:
//
//	Idle -> Submitting -> Unlocked (navigated to /stream/, terminal)
//	                   -> Locked   (message shown, may resubmit)
//	Locked -> Submitting
type StreamGateController struct {
	*controller
	token Field
}

// NewStreamGateController creates a controller reading the given token field.
func NewStreamGateController(p Page, token Field) (*StreamGateController, error) {
	c, err := newController("stream_gate", p)
	if err != nil {
		return nil, err
	}
	return &StreamGateController{controller: c, token: token}, nil
}

// Submit posts the token to /submit.
//
// Exactly 200 navigates to /stream/ without touching the response element
// and unlocks the gate for good. Any other status displays the body and
// returns ErrLocked. A transport failure displays GenericError.
//
// Returns:
//   - ErrUnlocked: the gate was already passed; nothing is sent
//   - ErrBusy: a submission is in flight
//   - ErrLocked or ErrTransport: the gate stays locked
func (c *StreamGateController) Submit(ctx context.Context) error {
	return c.guard(ControlSubmit, func() error {
		if c.State() == StateUnlocked {
			return ErrUnlocked
		}
		c.setState(StateSubmitting)

		form := NewForm().Add("token", c.token.Value())
		resp, err := c.transport.Do(ctx, Request{Method: http.MethodPost, Path: PathSubmit, Form: form})
		if err != nil {
			c.setState(StateLocked)
			return c.reportFailure("gate", inline, GenericError, err)
		}

		if resp.StatusCode != http.StatusOK {
			c.setState(StateLocked)
			return c.reportFailure("gate", inline, resp.Body,
				fmt.Errorf("%w: status %d", ErrLocked, resp.StatusCode))
		}

		if err := c.navigator.Navigate(ctx, PathStream); err != nil {
			c.setState(StateLocked)
			return c.reportFailure("gate", inline, GenericError, err)
		}
		c.setState(StateUnlocked)
		return nil
	})
}
