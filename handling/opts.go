package handling

import (
	"fmt"
	"net/http"
	"storefront_server/structs"
	"strconv"
	"strings"
)

// ParseProductListOptions reads sort, page and per_page from the query
// string. Missing parameters keep their zero value; the catalog applies the
// defaults.
func ParseProductListOptions(r *http.Request) (structs.ProductListOptions, error) {
	query := r.URL.Query()
	opts := structs.ProductListOptions{}

	if len(query) == 0 {
		return opts, nil
	}

	if sort := strings.ToLower(strings.TrimSpace(query.Get("sort"))); sort != "" {
		switch s := structs.ProductSort(sort); s {
		case structs.SortNameAsc, structs.SortPriceAsc, structs.SortPriceDesc:
			opts.Sort = s
		default:
			return opts, fmt.Errorf("unknown sort %q", sort)
		}
	}

	var err error
	if opts.Page, err = parsePositiveInt(query.Get("page"), "page"); err != nil {
		return opts, err
	}
	if opts.PerPage, err = parsePositiveInt(query.Get("per_page"), "per_page"); err != nil {
		return opts, err
	}

	return opts, nil
}

// ParseID parses a positive integer path or form id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parsePositiveInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive whole number", name)
	}
	return n, nil
}
