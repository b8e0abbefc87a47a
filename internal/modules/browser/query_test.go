package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/georgemunganga/stockdesk/internal/apperr"
)

func TestParseSortText(t *testing.T) {
	cases := map[string]*SortSpec{
		"price,desc":   {Field: "price", Direction: Desc},
		"price, DESC":  {Field: "price", Direction: Desc},
		"name,asc":     {Field: "name", Direction: Asc},
		"-createdAt":   {Field: "createdAt", Direction: Desc},
		"stock":        {Field: "stock", Direction: Asc},
		"  ":           nil,
		"total,upside": {Field: "total", Direction: Asc},
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseSortText(in), in)
	}
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("DESC")
	assert.NoError(t, err)
	assert.Equal(t, Desc, d)

	d, err = ParseDirection("")
	assert.NoError(t, err)
	assert.Equal(t, Asc, d)

	_, err = ParseDirection("sideways")
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestQuery_SortParam(t *testing.T) {
	assert.Equal(t, "", Query{}.SortParam())
	assert.Equal(t, "price", Query{Sort: &SortSpec{Field: "price", Direction: Asc}}.SortParam())
	assert.Equal(t, "-price", Query{Sort: &SortSpec{Field: "price", Direction: Desc}}.SortParam())
	assert.Equal(t, "name,desc", Query{SortText: "name,desc", Sort: &SortSpec{Field: "price"}}.SortParam())
}

func TestQuery_EmptyFilterIsUnfiltered(t *testing.T) {
	v := Query{Page: 0, Size: 10, Filter: FilterSpec{}}.Values()
	assert.Len(t, v, 2)
	assert.Equal(t, "0", v.Get("page"))
	assert.Equal(t, "10", v.Get("size"))
}
