package orders

import (
	"errors"
	"net/http"
	"storefront_server/api/middleware"
	"storefront_server/handling"
	"storefront_server/lib"
)

// GetHistory returns the signed-in shopper's orders, newest first.
func (orm *OrderRoutesManager) GetHistory(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	orders, err := orm.orderService.ListOrdersForSession(r.Context(), session)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) || errors.Is(err, lib.ErrUnauthenticated) {
			lib.ClearCookie(lib.SessionCookieName, w)
			lib.Redirect(w, r, "/login", middleware.LoginNotice)
			return
		}
		handling.HandleError(err, "Failed to load order history", orm.logger, w)
		return
	}

	handling.RenderView(w, r, map[string]any{
		"orders": orders,
	})
}
