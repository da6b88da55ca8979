package products

import (
	"errors"
	"net/http"
	"storefront_server/handling"
	"storefront_server/lib"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// Index handles GET / with the featured products.
func (p *ProductRoutesManager) Index(w http.ResponseWriter, r *http.Request) {
	featured, err := p.productService.GetFeaturedProducts(r.Context())
	if err != nil {
		handling.HandleError(err, "Failed to load featured products", p.logger, w)
		return
	}

	handling.RenderView(w, r, map[string]any{
		"products": featured,
	})
}

// FetchAllProducts handles GET /products with optional sorting and paging.
func (p *ProductRoutesManager) FetchAllProducts(w http.ResponseWriter, r *http.Request) {
	opts, err := handling.ParseProductListOptions(r)
	if err != nil {
		p.logger.Debug("Invalid catalog query", gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage(err.Error()),
			gecho.Send(),
		)
		return
	}

	list, err := p.productService.ListProducts(r.Context(), opts)
	if err != nil {
		handling.HandleError(err, "Failed to load products", p.logger, w)
		return
	}

	handling.RenderView(w, r, map[string]any{
		"products": list.Products,
		"sort":     list.Options.Sort,
		"page":     list.Options.Page,
		"per_page": list.Options.PerPage,
		"total":    list.Total,
	})
}

// FetchProductByID handles GET /product/{id} with the product's reviews.
func (p *ProductRoutesManager) FetchProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		gecho.NotFound(w,
			gecho.WithMessage("Product not found"),
			gecho.Send(),
		)
		return
	}

	detail, err := p.productService.GetProductDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			gecho.NotFound(w,
				gecho.WithMessage("Product not found"),
				gecho.Send(),
			)
			return
		}
		handling.HandleError(err, "Failed to load product", p.logger, w)
		return
	}

	handling.RenderView(w, r, map[string]any{
		"product": detail.Product,
		"reviews": detail.Reviews,
	})
}
