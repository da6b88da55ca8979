package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"storefront_server/database"
	"storefront_server/lib"
	"storefront_server/structs"
	"storefront_server/structs/tables"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"golang.org/x/sync/singleflight"
)

type ProductService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	store  database.Store
	cache  Cache
	group  singleflight.Group
	guard  fillGuard
}

func NewProductService(logger *gecho.Logger, cfg *structs.Config, store database.Store, cache Cache) *ProductService {
	return &ProductService{
		logger: logger,
		cfg:    cfg,
		store:  store,
		cache:  cache,
	}
}

// ListProducts returns the catalog sorted and paged per opts. The whole
// catalog is cached as one entry; concurrent misses share a single read.
func (ps *ProductService) ListProducts(ctx context.Context, opts structs.ProductListOptions) (*structs.ProductList, error) {
	startTime := time.Now()
	opts = ps.normalizeOptions(opts)

	products, err := ps.allProducts(ctx)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(products)
	sortProducts(sorted, opts.Sort)

	page := sorted
	if opts.PerPage > 0 {
		start := min((opts.Page-1)*opts.PerPage, len(sorted))
		end := min(start+opts.PerPage, len(sorted))
		page = sorted[start:end]
	}

	ps.logger.Debug("Products listed",
		gecho.Field("count", len(page)),
		gecho.Field("total", len(sorted)),
		gecho.Field("sort", opts.Sort),
		gecho.Field("duration", time.Since(startTime)),
	)
	return &structs.ProductList{
		Products: page,
		Options:  opts,
		Total:    len(sorted),
	}, nil
}

func (ps *ProductService) allProducts(ctx context.Context) ([]tables.Product, error) {
	cached, err := getJSON[[]tables.Product](ps.cache, productListKey())
	if err != nil {
		ps.logger.Warn("Failed to get product list from cache", gecho.Field("error", err))
	} else if cached != nil {
		return *cached, nil
	}

	v, err, _ := ps.group.Do(productListKey(), func() (any, error) {
		token := ps.guard.token()
		products, err := ps.store.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		if err := fill(&ps.guard, ps.cache, productListKey(), products, ps.cfg.Cache.ProductListTTL, token); err != nil {
			ps.logger.Warn("Failed to cache product list", gecho.Field("error", err))
		}
		return products, nil
	})
	if err != nil {
		ps.logger.Error("Failed to fetch products", gecho.Field("error", lib.GetDetailForLogging(err)))
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return v.([]tables.Product), nil
}

// GetFeaturedProducts returns the configured featured products in the
// configured order, skipping ids that no longer exist.
func (ps *ProductService) GetFeaturedProducts(ctx context.Context) ([]tables.Product, error) {
	ids := ps.cfg.Catalog.FeaturedProductIDs
	if len(ids) == 0 {
		return []tables.Product{}, nil
	}

	products, err := ps.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]tables.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	featured := make([]tables.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			featured = append(featured, p)
		}
	}
	return featured, nil
}

func (ps *ProductService) GetProductsByIDs(ctx context.Context, ids []int64) ([]tables.Product, error) {
	products, err := ps.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		ps.logger.Error("Failed to fetch products by IDs", gecho.Field("error", lib.GetDetailForLogging(err)), gecho.Field("ids", ids))
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// GetProduct returns lib.ErrNotFound for an unknown id.
func (ps *ProductService) GetProduct(ctx context.Context, id int64) (*tables.Product, error) {
	startTime := time.Now()

	cached, err := getJSON[tables.Product](ps.cache, productKey(id))
	if err != nil {
		ps.logger.Warn("Failed to get product from cache", gecho.Field("error", err), gecho.Field("id", id))
	} else if cached != nil {
		ps.logger.Debug("Product retrieved from cache", gecho.Field("id", id), gecho.Field("duration", time.Since(startTime)))
		return cached, nil
	}

	token := ps.guard.token()
	product, err := ps.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			ps.logger.Debug("Product not found", gecho.Field("id", id))
		} else {
			ps.logger.Error("Failed to fetch product by ID", gecho.Field("id", id), gecho.Field("error", lib.GetDetailForLogging(err)))
		}
		return nil, err
	}

	if err := fill(&ps.guard, ps.cache, productKey(id), product, ps.cfg.Cache.ProductTTL, token); err != nil {
		ps.logger.Warn("Failed to cache product", gecho.Field("error", err), gecho.Field("id", id))
	}

	return product, nil
}

// GetProductDetail is the product page: the product and its reviews.
func (ps *ProductService) GetProductDetail(ctx context.Context, id int64) (*structs.ProductDetail, error) {
	product, err := ps.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := ps.GetReviewsForProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &structs.ProductDetail{Product: product, Reviews: reviews}, nil
}

// GetReviewsForProduct returns the reviews newest first with the reviewer's
// name. Reviews are read uncached so a new review shows up immediately.
func (ps *ProductService) GetReviewsForProduct(ctx context.Context, productID int64) ([]structs.ReviewView, error) {
	reviews, err := ps.store.ListReviews(ctx, productID)
	if err != nil {
		ps.logger.Error("Failed to fetch reviews", gecho.Field("product_id", productID), gecho.Field("error", lib.GetDetailForLogging(err)))
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	views := make([]structs.ReviewView, 0, len(reviews))
	for i := range reviews {
		views = append(views, reviewView(&reviews[i], reviews[i].User))
	}
	return views, nil
}

// AddReview records a review by the session's user. The product must exist.
func (ps *ProductService) AddReview(ctx context.Context, session *structs.Session, req *structs.AddReviewRequest) (*structs.ReviewView, error) {
	if session == nil {
		return nil, lib.ErrUnauthenticated
	}

	if _, err := ps.store.GetProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	user, err := ps.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	review := &tables.Review{
		ProductID: req.ProductID,
		UserID:    user.ID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: time.Now(),
	}
	if review.Comment == "" {
		return nil, &lib.ValidationError{Errors: []lib.FieldError{{Field: "comment", Message: "is required"}}}
	}

	if err := ps.store.InsertReview(ctx, review); err != nil {
		ps.logger.Error("Failed to insert review", gecho.Field("error", lib.GetDetailForLogging(err)), gecho.Field("product_id", req.ProductID))
		return nil, err
	}

	ps.logger.Info("Review added",
		gecho.Field("review_id", review.ID),
		gecho.Field("product_id", review.ProductID),
		gecho.Field("user_id", user.ID),
	)
	view := reviewView(review, user)
	return &view, nil
}

// InvalidateProducts drops the cached list and the given products, after
// their stock changed. Fills still loading older rows are discarded.
func (ps *ProductService) InvalidateProducts(ids ...int64) {
	ps.guard.invalidate()
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, productListKey())
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	if err := ps.cache.Delete(keys...); err != nil {
		ps.logger.Warn("Failed to invalidate product caches", gecho.Field("error", err), gecho.Field("ids", ids))
		if err := ps.cache.DeletePattern("product*"); err != nil {
			ps.logger.Error("Failed to flush product caches", gecho.Field("error", err))
		}
	}
}

func (ps *ProductService) normalizeOptions(opts structs.ProductListOptions) structs.ProductListOptions {
	switch opts.Sort {
	case structs.SortNameAsc, structs.SortPriceAsc, structs.SortPriceDesc:
	default:
		opts.Sort = structs.SortNameAsc
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 0 {
		opts.PerPage = 0
	}
	if limit := ps.cfg.Catalog.MaxPerPage; limit > 0 && opts.PerPage > limit {
		opts.PerPage = limit
	}
	return opts
}

func sortProducts(products []tables.Product, sort structs.ProductSort) {
	slices.SortStableFunc(products, func(a, b tables.Product) int {
		var c int
		switch sort {
		case structs.SortPriceAsc:
			c = a.Price.Cmp(b.Price)
		case structs.SortPriceDesc:
			c = b.Price.Cmp(a.Price)
		default:
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

func reviewView(r *tables.Review, author *tables.User) structs.ReviewView {
	view := structs.ReviewView{
		ID:        r.ID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.Format(structs.DisplayTimeFormat),
	}
	if author != nil {
		view.FirstName = author.FirstName
		view.LastName = author.LastName
	}
	return view
}
