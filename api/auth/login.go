package auth

import (
	"errors"
	"net/http"
	"storefront_server/api/middleware"
	"storefront_server/handling"
	"storefront_server/lib"
	"storefront_server/structs"

	"github.com/MonkyMars/gecho"
)

const (
	noticeInvalidLogin = "Invalid email or password."
	noticeLoggedIn     = "Logged in successfully."
	noticeLoggedOut    = "You have been logged out."
)

func (arm *AuthRoutesManager) ShowLogin(w http.ResponseWriter, r *http.Request) {
	handling.RenderView(w, r, map[string]any{
		"form": "login",
	})
}

func (arm *AuthRoutesManager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateForm[structs.LoginRequest](r)
	if err != nil {
		arm.logger.Debug("Login form rejected", gecho.Field("error", err))
		lib.Redirect(w, r, "/login", handling.FormNotice(err))
		return
	}

	user, session, err := arm.authService.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, lib.ErrInvalidCredentials) {
			lib.Redirect(w, r, "/login", noticeInvalidLogin)
			return
		}
		handling.HandleError(err, "Unable to complete login. Please try again", arm.logger, w)
		return
	}

	lib.SetCookie(lib.SessionCookieName, session.Token, session.ExpiresAt, w)
	arm.logger.Debug("User logged in", gecho.Field("user_id", user.ID))

	lib.Redirect(w, r, "/", noticeLoggedIn)
}

// HandleLogout revokes the current session, if any, and always clears the
// cookie.
func (arm *AuthRoutesManager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if session, ok := middleware.GetSessionFromContext(r.Context()); ok {
		if err := arm.authService.Logout(session); err != nil {
			arm.logger.Error("Failed to revoke session during logout",
				gecho.Field("error", err),
				gecho.Field("user_id", session.UserID),
			)
		}
	}

	lib.ClearCookie(lib.SessionCookieName, w)
	lib.Redirect(w, r, "/", noticeLoggedOut)
}
