package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Categorias lists categories with an optional name filter.
func (c *Client) Categorias(ctx context.Context, page, size int, nombre string) (Page[Categoria], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if nombre != "" {
		q.Set("nombre", nombre)
	}
	var res Page[Categoria]
	err := c.do(ctx, http.MethodGet, "/categorias", q, nil, &res)
	return res, err
}

// AllCategorias returns the unpaginated category list for select inputs.
func (c *Client) AllCategorias(ctx context.Context) ([]Categoria, error) {
	var res []Categoria
	err := c.do(ctx, http.MethodGet, "/categorias/all", nil, nil, &res)
	return res, err
}

// CreateCategoria registers a category.
func (c *Client) CreateCategoria(ctx context.Context, cat Categoria) (Categoria, error) {
	var res Categoria
	err := c.do(ctx, http.MethodPost, "/categorias", nil, cat, &res)
	return res, err
}

// UpdateCategoria updates a category.
func (c *Client) UpdateCategoria(ctx context.Context, id string, cat Categoria) (Categoria, error) {
	var res Categoria
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/categorias/%s", url.PathEscape(id)), nil, cat, &res)
	return res, err
}

// DeleteCategoria removes a category.
func (c *Client) DeleteCategoria(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/categorias/%s", url.PathEscape(id)), nil, nil, nil)
}
