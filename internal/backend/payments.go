package backend

import (
	"context"
	"net/http"
)

// MetodosPago returns the full unpaginated payment method list. Dialogs
// open concurrently, so in-flight loads are coalesced, but only within one
// session: the flight key includes the bearer token, so another operator's
// expired token or cancelled request can never surface here.
func (c *Client) MetodosPago(ctx context.Context) ([]MetodoPago, error) {
	v, err, _ := c.payments.Do("metodos-pago:"+c.token(ctx), func() (any, error) {
		var res []MetodoPago
		if err := c.do(ctx, http.MethodGet, "/metodos-pago", nil, nil, &res); err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]MetodoPago), nil
}
