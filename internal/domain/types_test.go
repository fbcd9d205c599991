package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationClamps(t *testing.T) {
	p := NewPagination(0, 0, 20, 100)
	assert.Equal(t, Pagination{Page: 1, PageSize: 20}, p)

	p = NewPagination(3, 500, 20, 100)
	assert.Equal(t, 100, p.PageSize)
	assert.Equal(t, 200, p.Offset())

	p = NewPagination(math.MaxInt, 100, 20, 100)
	assert.Equal(t, MaxPage, p.Page)
	assert.Equal(t, (MaxPage-1)*100, p.Offset())
}
