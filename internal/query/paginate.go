package query

import "context"

const (
	// DefaultPage is used when the requested page is missing or invalid.
	DefaultPage = 1
	// DefaultLimit is used when the requested limit is missing or invalid.
	DefaultLimit = 10
)

// Page is one window of a plan's results plus total-count metadata.
type Page struct {
	Items      []Document `json:"items"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalDocs  int        `json:"totalDocs"`
	TotalPages int        `json:"totalPages"`
}

// NormalizePage coerces a requested page number to the documented policy:
// anything below 1 becomes DefaultPage.
func NormalizePage(page int) int {
	if page < 1 {
		return DefaultPage
	}
	return page
}

// NormalizeLimit coerces a requested page size: anything below 1 becomes
// DefaultLimit.
func NormalizeLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	return limit
}

// Paginate executes the plan and returns the requested window. The plan's
// sort applies before windowing. An empty result set is a successful page
// with zero items.
func Paginate(ctx context.Context, src Scanner, plan *Plan, page, limit int) (Page, error) {
	page = NormalizePage(page)
	limit = NormalizeLimit(limit)

	docs, err := Execute(ctx, src, plan)
	if err != nil {
		return Page{}, err
	}

	total := len(docs)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := docs[start:end]
	if items == nil {
		items = []Document{}
	}

	return Page{
		Items:      items,
		Page:       page,
		Limit:      limit,
		TotalDocs:  total,
		TotalPages: totalPages,
	}, nil
}
