package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Role names as issued by the backend.
const (
	RoleAdmin     = "ADMIN"
	RoleVentas    = "VENTAS"
	RoleCompras   = "COMPRAS"
	RoleProveedor = "PROVEEDOR"
	RoleCliente   = "CLIENTE"
)

// Claims carries the token fields the console renders menus from.
type Claims struct {
	Subject string
	Role    string
}

// ErrNoRole reports a token without a role claim.
var ErrNoRole = errors.New("auth: token has no role claim")

// DecodeClaims decodes the token payload WITHOUT verifying the signature.
// The backend is the authorization boundary and validates the token on
// every request; this decode only feeds menu visibility and must never be
// treated as a security control.
func DecodeClaims(token string) (Claims, error) {
	var mc jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &mc); err != nil {
		return Claims{}, fmt.Errorf("auth: decode token: %w", err)
	}
	claims := Claims{}
	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	role, _ := mc["role"].(string)
	if role == "" {
		return claims, ErrNoRole
	}
	claims.Role = role
	return claims, nil
}

// MenuSections lists the sidebar sections visible to a role.
func MenuSections(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{"dashboard", "categories", "products", "users", "purchases", "sales"}
	case RoleCompras:
		return []string{"dashboard", "categories", "products", "purchases"}
	case RoleVentas:
		return []string{"dashboard", "products", "sales"}
	default:
		return []string{"dashboard"}
	}
}
