package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Productos lists catalog items with optional name/category filters.
func (c *Client) Productos(ctx context.Context, page, size int, nombre, idCategoria string) (Page[Producto], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if nombre != "" {
		q.Set("nombre", nombre)
	}
	if idCategoria != "" {
		q.Set("idCategoria", idCategoria)
	}
	var res Page[Producto]
	err := c.do(ctx, http.MethodGet, "/productos", q, nil, &res)
	return res, err
}

// SearchProductos searches the whole catalog by code or name.
func (c *Client) SearchProductos(ctx context.Context, codigo, nombre string) ([]Producto, error) {
	q := url.Values{}
	if codigo != "" {
		q.Set("codigo", codigo)
	}
	if nombre != "" {
		q.Set("nombre", nombre)
	}
	var res []Producto
	err := c.do(ctx, http.MethodGet, "/productos/all", q, nil, &res)
	return res, err
}

// SearchProductosProveedor searches the catalog scoped to one supplier.
func (c *Client) SearchProductosProveedor(ctx context.Context, idProveedor, codigo, nombre string) ([]Producto, error) {
	q := url.Values{}
	if codigo != "" {
		q.Set("codigo", codigo)
	}
	if nombre != "" {
		q.Set("nombre", nombre)
	}
	var res []Producto
	err := c.do(ctx, http.MethodGet, "/productos/proveedor/"+url.PathEscape(idProveedor), q, nil, &res)
	return res, err
}

// ProductosLowestStock returns the dashboard's lowest-stock listing.
func (c *Client) ProductosLowestStock(ctx context.Context) ([]Producto, error) {
	var res []Producto
	err := c.do(ctx, http.MethodGet, "/productos/lowest-stock", nil, nil, &res)
	return res, err
}

// CreateProducto registers a catalog item.
func (c *Client) CreateProducto(ctx context.Context, payload ProductoPayload) (Producto, error) {
	var res Producto
	err := c.do(ctx, http.MethodPost, "/productos", nil, payload, &res)
	return res, err
}

// UpdateProducto updates a catalog item.
func (c *Client) UpdateProducto(ctx context.Context, id string, payload ProductoPayload) (Producto, error) {
	var res Producto
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/productos/%s", url.PathEscape(id)), nil, payload, &res)
	return res, err
}

// DeleteProducto removes a catalog item.
func (c *Client) DeleteProducto(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/productos/%s", url.PathEscape(id)), nil, nil, nil)
}
