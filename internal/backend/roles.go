package backend

import (
	"context"
	"net/http"
)

// Roles returns the role list for the user form.
func (c *Client) Roles(ctx context.Context) ([]Rol, error) {
	var res []Rol
	err := c.do(ctx, http.MethodGet, "/roles", nil, nil, &res)
	return res, err
}
