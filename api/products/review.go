package products

import (
	"errors"
	"net/http"
	"storefront_server/api/middleware"
	"storefront_server/handling"
	"storefront_server/lib"
	"storefront_server/structs"

	"github.com/MonkyMars/gecho"
)

// AddReview handles POST /add-review and answers with the stored review.
func (p *ProductRoutesManager) AddReview(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	req, err := lib.ExtractAndValidateForm[structs.AddReviewRequest](r)
	if err != nil {
		handling.HandleBadRequest(err, w)
		return
	}

	review, err := p.productService.AddReview(r.Context(), session, req)
	if err != nil {
		var ve *lib.ValidationError
		switch {
		case errors.As(err, &ve):
			handling.HandleBadRequest(ve, w)
		case errors.Is(err, lib.ErrUnauthenticated):
			gecho.Unauthorized(w, gecho.WithMessage(middleware.LoginNotice), gecho.Send())
		case errors.Is(err, lib.ErrNotFound):
			gecho.NotFound(w, gecho.WithMessage("Product not found"), gecho.Send())
		default:
			handling.HandleError(err, "Failed to add review", p.logger, w)
		}
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Review added"),
		gecho.WithData(review),
		gecho.Send(),
	)
}
