package portal

import (
	"context"
	"net/http"
)

// ProvisioningController drives the provisioning page: submitting WiFi
// credentials with an admin token, quitting config mode and moving to the
// token management page.
type ProvisioningController struct {
	*controller
	ssid     Field
	password Field
	token    Field
}

// NewProvisioningController creates a controller reading the given fields.
func NewProvisioningController(p Page, ssid, password, token Field) (*ProvisioningController, error) {
	c, err := newController("provisioning", p)
	if err != nil {
		return nil, err
	}
	return &ProvisioningController{controller: c, ssid: ssid, password: password, token: token}, nil
}

// Submit posts ssid, password and token to /submit and displays the answer
// verbatim, whatever its status. Values are sent unvalidated.
func (c *ProvisioningController) Submit(ctx context.Context) error {
	return c.guard(ControlSubmit, func() error {
		form := NewForm().
			Add("ssid", c.ssid.Value()).
			Add("password", c.password.Value()).
			Add("token", c.token.Value())
		return c.submit(ctx, "provision", PathSubmit, form)
	})
}

// GoToTokenManagement navigates to the token management page if it answers
// a probe with 2xx, and alerts otherwise.
func (c *ProvisioningController) GoToTokenManagement(ctx context.Context) error {
	return c.guard(ControlTokenMgmt, func() error {
		return c.probeAndNavigate(ctx, "goto_token_mgmt", PathTokenMgmt, AlertTokenMgmtRefused)
	})
}

// Quit asks the device to leave config mode and displays its answer. It
// sends no body and asks for no confirmation.
func (c *ProvisioningController) Quit(ctx context.Context) error {
	return c.guard(ControlQuit, func() error {
		resp, err := c.transport.Do(ctx, Request{Method: http.MethodPost, Path: PathQuit})
		if err != nil {
			return c.reportFailure("quit", inline, GenericError, err)
		}
		c.view.ShowResponse(resp.Body)
		return nil
	})
}
