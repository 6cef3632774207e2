package trade

import (
	"context"

	"github.com/almacen-console/almacen-console/internal/backend"
	"github.com/almacen-console/almacen-console/internal/cart"
)

func counterpartyOf(u backend.Usuario) cart.Counterparty {
	return cart.Counterparty{
		ID:             u.IDUsuario,
		Name:           u.Nombre,
		DocumentType:   u.TipoDocumento,
		DocumentNumber: u.NumeroDocumento,
	}
}

func counterpartiesOf(users []backend.Usuario) []cart.Counterparty {
	out := make([]cart.Counterparty, 0, len(users))
	for _, u := range users {
		out = append(out, counterpartyOf(u))
	}
	return out
}

// splitTerm routes a product search term to the code or name filter.
func splitTerm(term string) (codigo, nombre string) {
	if isDigits(term) {
		return term, ""
	}
	return "", term
}

// PurchaseSubmit maps a packaged cart onto the purchase-recording call.
// Line prices are the supplier prices captured at lookup time.
func PurchaseSubmit(client *backend.Client) cart.SubmitFunc {
	return func(ctx context.Context, sub cart.Submission) error {
		req := backend.CompraRequest{
			IDProveedor:  sub.CounterpartyID,
			IDMetodoPago: sub.PaymentMethodID,
			Productos:    make([]backend.ProductoCompraRequest, 0, len(sub.Items)),
		}
		for _, it := range sub.Items {
			req.Productos = append(req.Productos, backend.ProductoCompraRequest{
				IDProducto:           it.ProductID,
				Cantidad:             it.Quantity,
				PrecioUnitarioCompra: it.UnitPrice,
			})
		}
		return client.RegistrarCompra(ctx, req)
	}
}

// SaleSubmit maps a packaged cart onto the sale-recording call.
func SaleSubmit(client *backend.Client) cart.SubmitFunc {
	return func(ctx context.Context, sub cart.Submission) error {
		req := backend.VentaRequest{
			IDCliente:    sub.CounterpartyID,
			IDMetodoPago: sub.PaymentMethodID,
			Productos:    make([]backend.ProductoVentaRequest, 0, len(sub.Items)),
		}
		for _, it := range sub.Items {
			req.Productos = append(req.Productos, backend.ProductoVentaRequest{
				IDProducto:     it.ProductID,
				Cantidad:       it.Quantity,
				PrecioUnitario: it.UnitPrice,
			})
		}
		return client.RegistrarVenta(ctx, req)
	}
}

// PurchaseFlow builds the purchase dialog configuration. Counterparties
// are suppliers, product search is scoped to the selected supplier and
// lines carry the supplier price.
func PurchaseFlow(client *backend.Client, store *cart.Store) Flow {
	return Flow{
		Name:  "compra",
		Store: store,
		SearchCounterparties: func(ctx context.Context, documento, nombre string) ([]cart.Counterparty, error) {
			users, err := client.Proveedores(ctx, documento, nombre)
			if err != nil {
				return nil, err
			}
			return counterpartiesOf(users), nil
		},
		SearchProducts: func(ctx context.Context, counterpartyID, term string) ([]cart.Line, error) {
			codigo, nombre := splitTerm(term)
			products, err := client.SearchProductosProveedor(ctx, counterpartyID, codigo, nombre)
			if err != nil {
				return nil, err
			}
			out := make([]cart.Line, 0, len(products))
			for _, p := range products {
				out = append(out, cart.Line{
					ProductID:      p.IDProducto,
					Name:           p.Nombre,
					Code:           p.Codigo,
					UnitPrice:      p.PrecioUnitarioProveedor,
					AvailableStock: p.Stock,
				})
			}
			return out, nil
		},
		ScopeProductsToCounterparty: true,
		PaymentMethods:              client.MetodosPago,
	}
}

// SaleFlow builds the sale dialog configuration. Counterparties are
// customers, the whole catalog is searchable and lines carry the sale
// price.
func SaleFlow(client *backend.Client, store *cart.Store) Flow {
	return Flow{
		Name:  "venta",
		Store: store,
		SearchCounterparties: func(ctx context.Context, documento, nombre string) ([]cart.Counterparty, error) {
			users, err := client.Clientes(ctx, documento, nombre)
			if err != nil {
				return nil, err
			}
			return counterpartiesOf(users), nil
		},
		SearchProducts: func(ctx context.Context, _ string, term string) ([]cart.Line, error) {
			codigo, nombre := splitTerm(term)
			products, err := client.SearchProductos(ctx, codigo, nombre)
			if err != nil {
				return nil, err
			}
			out := make([]cart.Line, 0, len(products))
			for _, p := range products {
				out = append(out, cart.Line{
					ProductID:      p.IDProducto,
					Name:           p.Nombre,
					Code:           p.Codigo,
					UnitPrice:      p.PrecioUnitario,
					AvailableStock: p.Stock,
				})
			}
			return out, nil
		},
		PaymentMethods: client.MetodosPago,
	}
}
