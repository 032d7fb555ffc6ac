package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/phonebook-api/pkg/errors"
)

func TestMapPageIndexIsFloorDivision(t *testing.T) {
	for _, pageSize := range []int{1, 2, 7, 45, 100} {
		for firstRow := 0; firstRow < 500; firstRow += 3 {
			q, err := Map(firstRow, pageSize, true, "")
			require.NoError(t, err)
			assert.Equal(t, firstRow/pageSize, q.PageIndex, "firstRow=%d pageSize=%d", firstRow, pageSize)
			assert.Equal(t, pageSize, q.PageSize)
		}
	}
}

func TestMapGridPage(t *testing.T) {
	q, err := Map(90, 45, false, "email")
	require.NoError(t, err)
	assert.Equal(t, Query{PageIndex: 2, PageSize: 45, Order: Descending, SortField: "email"}, q)
	assert.Equal(t, 90, q.Offset())
	assert.Equal(t, 45, q.Limit())
	assert.False(t, q.Ascending())

	q, err = Map(44, 45, true, "")
	require.NoError(t, err)
	assert.Equal(t, 0, q.PageIndex)
	assert.Equal(t, 0, q.Offset())
}

func TestMapSortFieldFallback(t *testing.T) {
	for _, asc := range []bool{true, false} {
		q, err := Map(10, 5, asc, "")
		require.NoError(t, err)
		assert.Equal(t, NaturalOrder, q.SortField)
		assert.Equal(t, asc, q.Ascending())
	}

	q, err := Map(10, 5, true, "name")
	require.NoError(t, err)
	assert.Equal(t, "name", q.SortField)
}

func TestMapPassesUnknownFieldsThrough(t *testing.T) {
	q, err := Map(0, 5, true, "no_such_column")
	require.NoError(t, err)
	assert.Equal(t, "no_such_column", q.SortField)
}

func TestMapRejectsInvalidArguments(t *testing.T) {
	_, err := Map(0, 0, true, "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidArgument))

	_, err = Map(-1, 10, true, "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidArgument))
}

func TestMapIsIdempotent(t *testing.T) {
	first, err := Map(137, 45, false, "phone")
	require.NoError(t, err)
	second, err := Map(137, 45, false, "phone")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
