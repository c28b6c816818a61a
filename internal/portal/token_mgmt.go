package portal

import "context"

// TokenManagementController drives the token management page.
type TokenManagementController struct {
	*controller
	token  Field
	action Field
}

// NewTokenManagementController creates a controller reading the given
// fields. The action is passed to the device as an opaque string.
func NewTokenManagementController(p Page, token, action Field) (*TokenManagementController, error) {
	c, err := newController("token_mgmt", p)
	if err != nil {
		return nil, err
	}
	return &TokenManagementController{controller: c, token: token, action: action}, nil
}

// Submit posts token and action to /token_mgmt/submit and displays the
// answer verbatim, whatever its status. Empty values are sent as is.
func (c *TokenManagementController) Submit(ctx context.Context) error {
	return c.guard(ControlSubmit, func() error {
		form := NewForm().
			Add("token", c.token.Value()).
			Add("action", c.action.Value())
		return c.submit(ctx, "token_action", PathTokenMgmtSubmit, form)
	})
}

// Back navigates to the provisioning page if it answers a probe with 2xx,
// and alerts otherwise.
func (c *TokenManagementController) Back(ctx context.Context) error {
	return c.guard(ControlBack, func() error {
		return c.probeAndNavigate(ctx, "back", PathRoot, AlertBackRefused)
	})
}
