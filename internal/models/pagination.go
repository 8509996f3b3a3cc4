package models

// Meta describes the position of a page within a list result.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
	NextPage   *int `json:"nextPage,omitempty"`
	PrevPage   *int `json:"prevPage,omitempty"`
}

// NewMeta computes pagination metadata. totalPages is ceil(total/limit).
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	m := Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
	if m.HasNext {
		next := page + 1
		m.NextPage = &next
	}
	if m.HasPrev {
		prev := page - 1
		m.PrevPage = &prev
	}
	return m
}

// Page is the cached and returned envelope of a list query.
type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}
