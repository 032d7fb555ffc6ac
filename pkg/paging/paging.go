// Package paging translates grid-style lazy-load requests (first visible row,
// sort direction, sort property) into repository page queries.
package paging

import (
	"fmt"

	appErrors "github.com/noah-isme/phonebook-api/pkg/errors"
)

// NaturalOrder is the sort field used when the caller supplies none.
const NaturalOrder = "id"

// Order is the direction of a page query.
type Order string

const (
	Ascending  Order = "ASC"
	Descending Order = "DESC"
)

// Query describes one page of records.
type Query struct {
	PageIndex int
	PageSize  int
	Order     Order
	SortField string
}

// Map converts a zero-based first row offset into a page query. firstRow must
// not be negative and pageSize must be positive.
func Map(firstRow, pageSize int, ascending bool, sortField string) (Query, error) {
	if pageSize <= 0 {
		return Query{}, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("page size must be positive, got %d", pageSize))
	}
	if firstRow < 0 {
		return Query{}, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("first row must not be negative, got %d", firstRow))
	}

	order := Descending
	if ascending {
		order = Ascending
	}
	if sortField == "" {
		sortField = NaturalOrder
	}

	return Query{
		PageIndex: firstRow / pageSize,
		PageSize:  pageSize,
		Order:     order,
		SortField: sortField,
	}, nil
}

// Offset is the number of rows preceding the page.
func (q Query) Offset() int {
	return q.PageIndex * q.PageSize
}

// Limit is the maximum number of rows in the page.
func (q Query) Limit() int {
	return q.PageSize
}

// Ascending reports whether the page is sorted in ascending order.
func (q Query) Ascending() bool {
	return q.Order == Ascending
}
