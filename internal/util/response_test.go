package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, int64(3), p.TotalPages)
	assert.Equal(t, 11, p.From)
	assert.Equal(t, 20, p.To)
	assert.True(t, p.HasMore)

	p = NewPagination(3, 10, 25)
	assert.Equal(t, 21, p.From)
	assert.Equal(t, 25, p.To)
	assert.False(t, p.HasMore)

	p = NewPagination(0, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, int64(0), p.TotalPages)
	assert.Equal(t, 0, p.From)
	assert.False(t, p.HasMore)
}
