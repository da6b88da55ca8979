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
	noticeWrongPassword  = "Old password is required and must be correct to make changes."
	noticeEmailInUse     = "Email already exists. Please use a different email."
	noticeAccountUpdated = "Your account has been updated successfully."
)

// ShowAccount prefills the account form with the stored details.
func (arm *AuthRoutesManager) ShowAccount(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	user, err := arm.authService.GetUserByID(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			lib.ClearCookie(lib.SessionCookieName, w)
			lib.Redirect(w, r, "/login", middleware.LoginNotice)
			return
		}
		handling.HandleError(err, "Failed to load account", arm.logger, w)
		return
	}

	handling.RenderView(w, r, map[string]any{
		"account": structs.AccountView{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
	})
}

func (arm *AuthRoutesManager) HandleAccountUpdate(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	body, err := lib.ExtractAndValidateForm[structs.AccountUpdateRequest](r)
	if err != nil {
		var ve *lib.ValidationError
		if errors.As(err, &ve) && ve.HasField("old_password") {
			lib.Redirect(w, r, "/account", noticeWrongPassword)
			return
		}
		lib.Redirect(w, r, "/account", handling.FormNotice(err))
		return
	}

	_, err = arm.authService.UpdateProfile(r.Context(), session, body)
	switch {
	case err == nil:
		lib.Redirect(w, r, "/account", noticeAccountUpdated)
	case errors.Is(err, lib.ErrRejected):
		arm.logger.Debug("Account update with wrong password", gecho.Field("user_id", session.UserID))
		lib.Redirect(w, r, "/account", noticeWrongPassword)
	case errors.Is(err, lib.ErrConflict):
		lib.Redirect(w, r, "/account", noticeEmailInUse)
	case errors.Is(err, lib.ErrUnauthenticated), errors.Is(err, lib.ErrNotFound):
		lib.Redirect(w, r, "/login", middleware.LoginNotice)
	default:
		handling.HandleError(err, "Failed to update account", arm.logger, w)
	}
}
