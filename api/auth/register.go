package auth

import (
	"errors"
	"net/http"
	"storefront_server/handling"
	"storefront_server/lib"
	"storefront_server/structs"

	"github.com/MonkyMars/gecho"
)

const (
	noticeEmailTaken = "Email already exists. Please choose another."
	noticeRegistered = "Registration successful! Please log in."
)

func (arm *AuthRoutesManager) ShowRegister(w http.ResponseWriter, r *http.Request) {
	handling.RenderView(w, r, map[string]any{
		"form": "register",
	})
}

func (arm *AuthRoutesManager) HandleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateForm[structs.RegisterRequest](r)
	if err != nil {
		lib.Redirect(w, r, "/register", handling.FormNotice(err))
		return
	}

	user, err := arm.authService.Register(r.Context(), body)
	if err != nil {
		if errors.Is(err, lib.ErrConflict) {
			lib.Redirect(w, r, "/register", noticeEmailTaken)
			return
		}
		handling.HandleError(err, "Failed to register. Please try again", arm.logger, w)
		return
	}

	arm.logger.Info("Account registered", gecho.Field("user_id", user.ID))
	lib.Redirect(w, r, "/login", noticeRegistered)
}
