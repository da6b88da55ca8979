package basket

import (
	"errors"
	"net/http"
	"storefront_server/handling"
	"storefront_server/lib"
	"storefront_server/structs"

	"github.com/MonkyMars/gecho"
)

const noticeProductGone = "That product is no longer available."

func (brm *BasketRoutesManager) ShowBasket(w http.ResponseWriter, r *http.Request) {
	view, err := brm.checkoutService.View(r.Context(), lib.ReadBasket(r))
	if err != nil {
		handling.HandleError(err, "Failed to load basket", brm.logger, w)
		return
	}

	handling.RenderView(w, r, map[string]any{
		"basket": view,
	})
}

// AddToBasket handles the product page form and sends the shopper to the
// basket. Stock is not checked here; checkout does that.
func (brm *BasketRoutesManager) AddToBasket(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateForm[structs.AddToBasketRequest](r)
	if err != nil {
		lib.Redirect(w, r, "/basket", handling.FormNotice(err))
		return
	}

	if _, err := brm.productService.GetProduct(r.Context(), body.ProductID); err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			lib.Redirect(w, r, "/products", noticeProductGone)
			return
		}
		handling.HandleError(err, "Failed to add to basket", brm.logger, w)
		return
	}

	basket := lib.ReadBasket(r)
	basket.Add(lib.BasketKey(body.ProductID), body.Quantity)
	lib.WriteBasket(w, basket)

	brm.logger.Debug("Added to basket",
		gecho.Field("product_id", body.ProductID),
		gecho.Field("quantity", body.Quantity),
	)
	lib.Redirect(w, r, "/basket", "")
}

// UpdateBasket sets a line's quantity; zero or less removes it. Products
// that are not in the basket are ignored.
func (brm *BasketRoutesManager) UpdateBasket(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.UpdateBasketRequest](r)
	if err != nil {
		handling.HandleBadRequest(err, w)
		return
	}

	basket := lib.ReadBasket(r)
	if basket.Has(body.ProductID) {
		basket.SetQuantity(body.ProductID, body.Quantity)
	}
	lib.WriteBasket(w, basket)

	gecho.Success(w,
		gecho.WithMessage("Basket updated"),
		gecho.WithData(map[string]any{
			"item_count": basket.ItemCount(),
		}),
		gecho.Send(),
	)
}

func (brm *BasketRoutesManager) DeleteFromBasket(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.DeleteFromBasketRequest](r)
	if err != nil {
		handling.HandleBadRequest(err, w)
		return
	}

	basket := lib.ReadBasket(r)
	basket.Remove(body.ProductID)
	lib.WriteBasket(w, basket)

	gecho.Success(w,
		gecho.WithMessage("Item removed from basket"),
		gecho.WithData(map[string]any{
			"item_count": basket.ItemCount(),
		}),
		gecho.Send(),
	)
}
