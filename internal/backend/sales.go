package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Ventas lists sales, optionally filtered by customer name.
func (c *Client) Ventas(ctx context.Context, page, size int, nombreCliente string) (Page[VentaResumen], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if nombreCliente != "" {
		q.Set("nombreCliente", nombreCliente)
	}
	var res Page[VentaResumen]
	err := c.do(ctx, http.MethodGet, "/ventas", q, nil, &res)
	return res, err
}

// RegistrarVenta records a sale.
func (c *Client) RegistrarVenta(ctx context.Context, req VentaRequest) error {
	return c.do(ctx, http.MethodPost, "/ventas", nil, req, nil)
}

// AnularVenta voids a sale with a mandatory reason.
func (c *Client) AnularVenta(ctx context.Context, id, observacion string) error {
	body := map[string]string{"observacion": observacion}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/ventas/%s/anular", url.PathEscape(id)), nil, body, nil)
}

// DetalleVenta fetches the line items of a recorded sale.
func (c *Client) DetalleVenta(ctx context.Context, ventaID string) ([]DetalleVenta, error) {
	var res []DetalleVenta
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/detalles-venta/venta/%s", url.PathEscape(ventaID)), nil, nil, &res)
	return res, err
}

// FacturaVenta fetches the rendered sale invoice document.
func (c *Client) FacturaVenta(ctx context.Context, ventaID string) ([]byte, string, error) {
	return c.download(ctx, fmt.Sprintf("/ventas/%s/factura", url.PathEscape(ventaID)))
}
