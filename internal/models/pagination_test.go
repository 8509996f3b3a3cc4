package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name               string
		page, limit, total int
		want               Meta
	}{
		{
			name: "empty result", page: 1, limit: 10, total: 0,
			want: Meta{Page: 1, Limit: 10, Total: 0, TotalPages: 0},
		},
		{
			name: "single page", page: 1, limit: 10, total: 7,
			want: Meta{Page: 1, Limit: 10, Total: 7, TotalPages: 1},
		},
		{
			name: "first of many", page: 1, limit: 10, total: 25,
			want: Meta{Page: 1, Limit: 10, Total: 25, TotalPages: 3, HasNext: true, NextPage: intPtr(2)},
		},
		{
			name: "middle page", page: 2, limit: 10, total: 25,
			want: Meta{Page: 2, Limit: 10, Total: 25, TotalPages: 3, HasNext: true, HasPrev: true, NextPage: intPtr(3), PrevPage: intPtr(1)},
		},
		{
			name: "last page", page: 3, limit: 10, total: 25,
			want: Meta{Page: 3, Limit: 10, Total: 25, TotalPages: 3, HasPrev: true, PrevPage: intPtr(2)},
		},
		{
			name: "exact multiple", page: 2, limit: 10, total: 20,
			want: Meta{Page: 2, Limit: 10, Total: 20, TotalPages: 2, HasPrev: true, PrevPage: intPtr(1)},
		},
		{
			name: "past the end", page: 5, limit: 10, total: 25,
			want: Meta{Page: 5, Limit: 10, Total: 25, TotalPages: 3, HasPrev: true, PrevPage: intPtr(4)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMeta(tt.page, tt.limit, tt.total))
		})
	}
}
