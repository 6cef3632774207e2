package backend

import (
	"context"
	"net/http"
)

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authenticateResponse struct {
	JWT string `json:"jwt"`
}

// Authenticate exchanges credentials for a signed token. The token payload
// is decoded (unverified) elsewhere for menu rendering; the backend remains
// the authorization boundary.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	var res authenticateResponse
	if err := c.do(ctx, http.MethodPost, "/authenticate", nil, authenticateRequest{Username: username, Password: password}, &res); err != nil {
		return "", err
	}
	return res.JWT, nil
}
