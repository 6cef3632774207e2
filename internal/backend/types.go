package backend

// Wire types mirror the backend's JSON contract. Field names are the
// backend's, not ours; do not rename them.

// Page is the backend's paginated envelope.
type Page[T any] struct {
	Content    []T `json:"content"`
	TotalPages int `json:"totalPages"`
}

// Rol is a user role.
type Rol struct {
	IDRol  string `json:"idRol"`
	Nombre string `json:"nombre"`
}

// Usuario models suppliers, customers and staff alike.
type Usuario struct {
	IDUsuario       string `json:"idUsuario,omitempty"`
	Nombre          string `json:"nombre"`
	Email           string `json:"email"`
	Direccion       string `json:"direccion,omitempty"`
	Telefono        string `json:"telefono,omitempty"`
	Password        string `json:"password,omitempty"`
	Rol             Rol    `json:"rol"`
	TipoDocumento   string `json:"tipoDocumento,omitempty"`
	NumeroDocumento string `json:"numeroDocumento,omitempty"`
}

// Categoria is a product category.
type Categoria struct {
	IDCategoria string `json:"idCategoria,omitempty"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
}

// Producto is a catalog item with its available stock.
type Producto struct {
	IDProducto               string    `json:"idProducto,omitempty"`
	Codigo                   int       `json:"codigo,omitempty"`
	Nombre                   string    `json:"nombre"`
	Descripcion              string    `json:"descripcion,omitempty"`
	PrecioUnitario           float64   `json:"precioUnitario"`
	PrecioUnitarioProveedor  float64   `json:"precioUnitarioProveedor"`
	Stock                    int       `json:"stock"`
	Categoria                Categoria `json:"categoria"`
	Proveedor                Usuario   `json:"proveedor"`
}

// ProductoPayload is the create/update request for a product.
type ProductoPayload struct {
	IDProducto              string  `json:"idProducto,omitempty"`
	Codigo                  int     `json:"codigo,omitempty"`
	Nombre                  string  `json:"nombre"`
	Descripcion             string  `json:"descripcion,omitempty"`
	PrecioUnitarioVenta     float64 `json:"precioUnitarioVenta"`
	PrecioUnitarioProveedor float64 `json:"precioUnitarioProveedor"`
	Stock                   int     `json:"stock"`
	Categoria               struct {
		IDCategoria string `json:"idCategoria"`
	} `json:"categoria"`
	Proveedor struct {
		IDUsuario string `json:"idUsuario"`
	} `json:"proveedor"`
}

// MetodoPago is a payment method.
type MetodoPago struct {
	IDMetodoPago string `json:"idMetodoPago"`
	Nombre       string `json:"nombre"`
}

// ProductoCompraRequest is one purchase line on the wire.
type ProductoCompraRequest struct {
	IDProducto           string  `json:"idProducto"`
	Cantidad             int     `json:"cantidad"`
	PrecioUnitarioCompra float64 `json:"precioUnitarioCompra"`
}

// CompraRequest records a purchase.
type CompraRequest struct {
	IDProveedor  string                  `json:"idProveedor"`
	IDMetodoPago string                  `json:"idMetodoPago"`
	Productos    []ProductoCompraRequest `json:"productos"`
}

// ProductoVentaRequest is one sale line on the wire.
type ProductoVentaRequest struct {
	IDProducto     string  `json:"idProducto"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precioUnitario"`
}

// VentaRequest records a sale.
type VentaRequest struct {
	IDCliente    string                 `json:"idCliente"`
	IDMetodoPago string                 `json:"idMetodoPago"`
	Productos    []ProductoVentaRequest `json:"productos"`
}

// CompraResumen is one row of the purchase listing.
type CompraResumen struct {
	IDCompra               string  `json:"idCompra"`
	FechaCompra            string  `json:"fechaCompra"`
	Subtotal               float64 `json:"subtotal"`
	Total                  float64 `json:"total"`
	NombreCliente          string  `json:"nombreCliente"`
	NombreProveedor        string  `json:"nombreProveedor"`
	MetodoPago             string  `json:"metodoPago"`
	Estado                 string  `json:"estado"`
	Observacion            string  `json:"observacion"`
	NumeroFacturaProveedor string  `json:"numeroFacturaProveedor"`
	OtrosDetalles          string  `json:"otrosDetalles"`
}

// ProductoDetalle identifies the product inside a transaction line.
type ProductoDetalle struct {
	IDProducto string `json:"idProducto"`
	Nombre     string `json:"nombre"`
}

// DetalleCompra is one line of a recorded purchase.
type DetalleCompra struct {
	IDDetalleCompra         string          `json:"idDetalleCompra"`
	Cantidad                int             `json:"cantidad"`
	PrecioUnitarioProveedor float64         `json:"precioUnitarioProveedor"`
	Producto                ProductoDetalle `json:"producto"`
}

// VentaResumen is one row of the sale listing.
type VentaResumen struct {
	IDVenta       string  `json:"idVenta"`
	FechaVenta    string  `json:"fechaVenta"`
	Subtotal      float64 `json:"subtotal"`
	Total         float64 `json:"total"`
	NombreCliente string  `json:"nombreCliente"`
	MetodoPago    string  `json:"metodoPago"`
	Estado        string  `json:"estado"`
	Observacion   string  `json:"observacion"`
}

// DetalleVenta is one line of a recorded sale.
type DetalleVenta struct {
	IDDetalleVenta string          `json:"idDetalleVenta"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario float64         `json:"precioUnitario"`
	Producto       ProductoDetalle `json:"producto"`
}
