package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Compras lists purchases, optionally filtered by supplier name.
func (c *Client) Compras(ctx context.Context, page, size int, nombreProveedor string) (Page[CompraResumen], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if nombreProveedor != "" {
		q.Set("nombreProveedor", nombreProveedor)
	}
	var res Page[CompraResumen]
	err := c.do(ctx, http.MethodGet, "/compras", q, nil, &res)
	return res, err
}

// RegistrarCompra records a purchase.
func (c *Client) RegistrarCompra(ctx context.Context, req CompraRequest) error {
	return c.do(ctx, http.MethodPost, "/compras", nil, req, nil)
}

// AnularCompra voids a purchase with a mandatory reason.
func (c *Client) AnularCompra(ctx context.Context, id, observacion string) error {
	body := map[string]string{"observacion": observacion}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/compras/%s/anular", url.PathEscape(id)), nil, body, nil)
}

// DetalleCompra fetches the line items of a recorded purchase.
func (c *Client) DetalleCompra(ctx context.Context, compraID string) ([]DetalleCompra, error) {
	var res []DetalleCompra
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/detalles-compra/compra/%s", url.PathEscape(compraID)), nil, nil, &res)
	return res, err
}

// FacturaCompra fetches the rendered purchase invoice document.
func (c *Client) FacturaCompra(ctx context.Context, compraID string) ([]byte, string, error) {
	return c.download(ctx, fmt.Sprintf("/compras/%s/factura", url.PathEscape(compraID)))
}
