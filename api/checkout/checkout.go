package checkout

import (
	"errors"
	"fmt"
	"net/http"
	"storefront_server/api/middleware"
	"storefront_server/handling"
	"storefront_server/lib"
	"storefront_server/structs"

	"github.com/MonkyMars/gecho"
)

const (
	noticeEmptyBasket     = "Your basket is empty! Add items before proceeding to checkout."
	noticeOutOfStock      = "Product '%s' is out of stock or exceeds available quantity. Please update your basket."
	noticeUnknownProduct  = "A product in your basket is no longer available. Please update your basket."
	noticeCheckoutSuccess = "Checkout successful! Your order has been placed."
)

// ShowCheckout renders the review step. An empty basket goes back to the
// basket page.
func (crm *CheckoutRoutesManager) ShowCheckout(w http.ResponseWriter, r *http.Request) {
	view, err := crm.checkoutService.Review(r.Context(), lib.ReadBasket(r))
	if err != nil {
		if errors.Is(err, lib.ErrEmptyBasket) {
			lib.Redirect(w, r, "/basket", noticeEmptyBasket)
			return
		}
		handling.HandleError(err, "Failed to load checkout", crm.logger, w)
		return
	}

	handling.RenderView(w, r, map[string]any{
		"basket": view,
	})
}

// ConfirmCheckout places the order and clears the basket. Any rejection
// leaves the basket as it was.
func (crm *CheckoutRoutesManager) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	basket := lib.ReadBasket(r)
	if basket.IsEmpty() {
		lib.Redirect(w, r, "/basket", noticeEmptyBasket)
		return
	}

	body, err := lib.ExtractAndValidateForm[structs.CheckoutRequest](r)
	if err != nil {
		lib.Redirect(w, r, "/checkout", handling.FormNotice(err))
		return
	}

	order, err := crm.checkoutService.Confirm(r.Context(), session, basket, body.Address)
	if err != nil {
		var (
			stockErr *lib.InsufficientStockError
			ve       *lib.ValidationError
		)
		switch {
		case errors.As(err, &stockErr):
			lib.Redirect(w, r, "/basket", fmt.Sprintf(noticeOutOfStock, stockErr.ProductName))
		case errors.Is(err, lib.ErrEmptyBasket):
			lib.Redirect(w, r, "/basket", noticeEmptyBasket)
		case errors.Is(err, lib.ErrNotFound):
			lib.Redirect(w, r, "/basket", noticeUnknownProduct)
		case errors.As(err, &ve):
			lib.Redirect(w, r, "/checkout", ve.Notice())
		case errors.Is(err, lib.ErrUnauthenticated):
			lib.Redirect(w, r, "/login", middleware.LoginNotice)
		default:
			handling.HandleError(err, "Checkout failed. Your basket has not been changed", crm.logger, w)
		}
		return
	}

	crm.logger.Info("Order placed",
		gecho.Field("order_id", order.ID),
		gecho.Field("user_id", session.UserID),
	)

	lib.ClearBasket(w)
	lib.Redirect(w, r, "/history", noticeCheckoutSuccess)
}
