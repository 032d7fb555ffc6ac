package models

// Pagination describes the page returned to a grid request.
type Pagination struct {
	FirstRow   int    `json:"first_row"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalCount int    `json:"total_count"`
	SortField  string `json:"sort_field"`
	SortOrder  string `json:"sort_order"`
}
