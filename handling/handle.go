package handling

import (
	"errors"
	"net/http"
	"storefront_server/lib"

	"github.com/MonkyMars/gecho"
)

// HandleError logs an unexpected failure and answers 500 without leaking
// its detail.
func HandleError(err error, msg string, logger *gecho.Logger, w http.ResponseWriter) error {
	logger.Error("An error occurred", gecho.Field("error", err), gecho.Field("msg", msg), gecho.WithCallerSkip(3))

	return gecho.InternalServerError(w, gecho.WithMessage(msg), gecho.Send())
}

// HandleBadRequest answers 400, spelling out field errors when there are any.
func HandleBadRequest(err error, w http.ResponseWriter) error {
	msg := "Invalid request"
	var ve *lib.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Notice()
	}
	return gecho.BadRequest(w, gecho.WithMessage(msg), gecho.Send())
}

// FormNotice turns a form binding or validation error into a notice for the
// redirect back to the form.
func FormNotice(err error) string {
	var ve *lib.ValidationError
	if errors.As(err, &ve) {
		return ve.Notice()
	}
	return "Please check the form and try again."
}
