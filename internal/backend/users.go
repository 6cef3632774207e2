package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Usuarios lists users with an optional name filter.
func (c *Client) Usuarios(ctx context.Context, page, size int, nombre string) (Page[Usuario], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if nombre != "" {
		q.Set("nombre", nombre)
	}
	var res Page[Usuario]
	err := c.do(ctx, http.MethodGet, "/usuarios", q, nil, &res)
	return res, err
}

// CreateUsuario registers a user.
func (c *Client) CreateUsuario(ctx context.Context, u Usuario) (Usuario, error) {
	var res Usuario
	err := c.do(ctx, http.MethodPost, "/usuarios", nil, u, &res)
	return res, err
}

// UpdateUsuario updates a user.
func (c *Client) UpdateUsuario(ctx context.Context, id string, u Usuario) (Usuario, error) {
	var res Usuario
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/usuarios/%s", url.PathEscape(id)), nil, u, &res)
	return res, err
}

// DeleteUsuario removes a user.
func (c *Client) DeleteUsuario(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/usuarios/%s", url.PathEscape(id)), nil, nil, nil)
}

// UpdateUsuarioPassword replaces a user's password.
func (c *Client) UpdateUsuarioPassword(ctx context.Context, id, password string) error {
	body := map[string]string{"password": password}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/usuarios/%s/password", url.PathEscape(id)), nil, body, nil)
}

func counterpartyQuery(numeroDocumento, nombre string) url.Values {
	q := url.Values{}
	if numeroDocumento != "" {
		q.Set("numeroDocumento", numeroDocumento)
	}
	if nombre != "" {
		q.Set("nombre", nombre)
	}
	return q
}

// Proveedores looks up supplier candidates by document number and/or name.
func (c *Client) Proveedores(ctx context.Context, numeroDocumento, nombre string) ([]Usuario, error) {
	var res []Usuario
	err := c.do(ctx, http.MethodGet, "/usuarios/proveedores", counterpartyQuery(numeroDocumento, nombre), nil, &res)
	return res, err
}

// Clientes looks up customer candidates by document number and/or name.
func (c *Client) Clientes(ctx context.Context, numeroDocumento, nombre string) ([]Usuario, error) {
	var res []Usuario
	err := c.do(ctx, http.MethodGet, "/usuarios/clientes", counterpartyQuery(numeroDocumento, nombre), nil, &res)
	return res, err
}
