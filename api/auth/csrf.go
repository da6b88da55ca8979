package auth

import (
	"net/http"
	"storefront_server/handling"
	"storefront_server/lib"
	"time"

	"github.com/MonkyMars/gecho"
)

// HandleCSRF issues a CSRF token as a readable cookie and in the body.
func (arm *AuthRoutesManager) HandleCSRF(w http.ResponseWriter, r *http.Request) {
	token, err := lib.GenerateCSRFToken()
	if err != nil {
		handling.HandleError(err, "Failed to generate CSRF token", arm.logger, w)
		return
	}

	lib.SetCSRFCookie(token, time.Now().Add(arm.cfg.Security.CSRFExpiry), w)

	gecho.Success(w,
		gecho.WithData(map[string]string{
			"csrf_token": token,
		}),
		gecho.Send(),
	)
}
