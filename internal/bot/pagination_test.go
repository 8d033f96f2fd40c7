package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	testCases := []struct {
		name      string
		page      int
		wantLen   int
		wantPage  int
		wantTotal int
		wantFirst int
	}{
		{name: "first page", page: 1, wantLen: 10, wantPage: 1, wantTotal: 3, wantFirst: 0},
		{name: "middle page", page: 2, wantLen: 10, wantPage: 2, wantTotal: 3, wantFirst: 10},
		{name: "short last page", page: 3, wantLen: 5, wantPage: 3, wantTotal: 3, wantFirst: 20},
		{name: "page past the end clamps", page: 9, wantLen: 5, wantPage: 3, wantTotal: 3, wantFirst: 20},
		{name: "zero page clamps to first", page: 0, wantLen: 10, wantPage: 1, wantTotal: 3, wantFirst: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			slice, page, total := paginate(items, tc.page, studentsPerPage)
			assert.Len(t, slice, tc.wantLen)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantTotal, total)
			if tc.wantLen > 0 {
				assert.Equal(t, tc.wantFirst, slice[0])
			}
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	slice, page, total := paginate([]int{}, 1, studentsPerPage)
	assert.Empty(t, slice)
	assert.Equal(t, 1, page)
	assert.Equal(t, 1, total)
}
