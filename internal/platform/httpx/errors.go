// Package httpx provides HTTP response utilities.
package httpx

import (
	"net/http"

	"github.com/almacen-console/almacen-console/internal/backend"
)

// RedirectIfAuthExpired sends the browser to the login screen when the
// error is an intercepted 401. The token is already cleared by the client
// hook; pages only need to navigate. Reports whether it handled the error.
func RedirectIfAuthExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !backend.IsAuthExpired(err) {
		return false
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

// RespondBackendError maps a classified backend error onto the JSON surface
// used by the dialog endpoints. 401s answer with a login redirect marker so
// the page script can navigate; the screen never handles them itself.
func RespondBackendError(w http.ResponseWriter, err error) {
	msg := backend.UserMessage(err)
	switch backend.KindOf(err) {
	case backend.KindValidation:
		Problem(w, http.StatusUnprocessableEntity, "Validación", msg)
	case backend.KindAuthExpired:
		w.Header().Set("X-Redirect", "/login")
		Problem(w, http.StatusUnauthorized, "Sesión expirada", msg)
	case backend.KindRemote:
		Problem(w, http.StatusBadGateway, "Rechazado por el servidor", msg)
	default:
		Problem(w, http.StatusBadGateway, "Error de red", msg)
	}
}
