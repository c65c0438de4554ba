package models

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps page to >= 1 and limit to [1, MaxPageLimit].
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

func (p Page) Paginate(total int) Pagination {
	pages := (total + p.Limit - 1) / p.Limit
	return Pagination{
		CurrentPage: p.Number,
		TotalPages:  pages,
		TotalItems:  total,
		HasNext:     p.Number < pages,
		HasPrev:     p.Number > 1,
	}
}
