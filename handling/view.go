package handling

import (
	"net/http"
	"storefront_server/api/middleware"
	"storefront_server/lib"

	"github.com/MonkyMars/gecho"
)

// RenderView answers a page request with its JSON projection. The pending
// notice, the active locale and whether a shopper is signed in are added to
// every view.
func RenderView(w http.ResponseWriter, r *http.Request, view map[string]any) {
	if view == nil {
		view = map[string]any{}
	}
	_, signedIn := middleware.GetSessionFromContext(r.Context())
	view["notice"] = lib.PopNotice(w, r)
	view["locale"] = middleware.GetLocaleFromContext(r.Context())
	view["authenticated"] = signedIn

	gecho.Success(w,
		gecho.WithData(view),
		gecho.Send(),
	)
}
