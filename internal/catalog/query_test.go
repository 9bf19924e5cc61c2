package catalog

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniCatalog/pkg/kit"
)

func TestFilter_SubstringAND(t *testing.T) {
	ps := []Product{
		{Name: "Red Mug", Description: "ceramic"},
		{Name: "Red Shirt", Description: "cotton"},
		{Name: "Blue Mug", Description: "ceramic"},
	}

	assert.Equal(t, []string{"Red Mug", "Red Shirt"}, names(Filter(ps, "Red", "")))
	assert.Equal(t, []string{"Red Mug", "Blue Mug"}, names(Filter(ps, "", "ceramic")))
	assert.Equal(t, []string{"Red Mug"}, names(Filter(ps, "Red", "ceramic")))
	assert.Empty(t, Filter(ps, "red", ""), "matching is case-sensitive")
	assert.Len(t, Filter(ps, "", ""), 3)
}

func TestSortBy_StableAndNonMutating(t *testing.T) {
	ps := []Product{
		product("1", "C", 5, 0),
		product("2", "A", 1, 0),
		product("3", "B", 5, 0),
		product("4", "D", 1, 0),
	}
	before := append([]Product(nil), ps...)

	got := SortBy(ps, SortQuantity)

	assert.Equal(t, []string{"A", "D", "C", "B"}, names(got), "equal quantities keep input order")
	assert.Equal(t, before, ps, "input must not be reordered")
}

func TestSortBy_FieldTypes(t *testing.T) {
	a := product("b", "x", 0, 0)
	a.Price, a.CreatedAt = 2.5, t0.Add(time.Hour)
	b := product("a", "y", 0, 0)
	b.Price, b.CreatedAt = 10, t0

	assert.Equal(t, []string{"x", "y"}, names(SortBy([]Product{b, a}, SortPrice)))
	assert.Equal(t, []string{"y", "x"}, names(SortBy([]Product{a, b}, SortCreatedAt)))
	assert.Equal(t, []string{"y", "x"}, names(SortBy([]Product{a, b}, SortID)))
	assert.Equal(t, []string{"x", "y"}, names(SortBy([]Product{a, b}, SortNone)))
}

func TestParseSortField(t *testing.T) {
	f, err := ParseSortField("pending_orders")
	require.NoError(t, err)
	assert.Equal(t, SortPendingOrders, f)

	f, err = ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, f)

	_, err = ParseSortField("colour")
	require.Error(t, err)
	assert.True(t, kit.IsKind(err, kit.KindValidation))
}

func TestPaginate(t *testing.T) {
	ps := []Product{
		product("1", "A", 0, 0),
		product("2", "B", 0, 0),
		product("3", "C", 0, 0),
		product("4", "D", 0, 0),
		product("5", "E", 0, 0),
	}

	cases := []struct {
		name string
		page Page
		want []string
	}{
		{"first page", Page{Number: 1, Size: 2}, []string{"A", "B"}},
		{"last partial page", Page{Number: 3, Size: 2}, []string{"E"}},
		{"past the end", Page{Number: 4, Size: 2}, []string{}},
		{"only page set", Page{Number: 2}, []string{"A", "B", "C", "D", "E"}},
		{"page zero", Page{Size: 2}, []string{}},
		{"negative page", Page{Number: -3, Size: 2}, []string{}},
		{"huge size", Page{Number: 1, Size: math.MaxInt}, []string{"A", "B", "C", "D", "E"}},
		{"max page", Page{Number: math.MaxInt, Size: 2}, []string{}},
		{"offset wraps to zero", Page{Number: 1<<62 + 1, Size: 4}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Paginate(ps, tc.page)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestLowStock_AscendingRegardlessOfInput(t *testing.T) {
	ps := []Product{
		product("1", "A", 10, 0),
		product("2", "B", 2, 0),
		product("3", "C", 0, 0),
		product("4", "D", 2, 0),
		product("5", "E", 3, 0),
	}

	assert.Equal(t, []string{"C", "B", "D"}, names(LowStock(ps, 2)))
	assert.Empty(t, LowStock(ps, -1))
}

func TestMostPopular(t *testing.T) {
	ps := []Product{
		product("1", "A", 0, 3),
		product("2", "B", 0, 9),
		product("3", "C", 0, 1),
		product("4", "D", 0, 9),
	}

	assert.Equal(t, []string{"B", "D", "A", "C"}, names(MostPopular(ps, 0)))
	assert.Equal(t, []string{"B", "D"}, names(MostPopular(ps, 2)))
	assert.Len(t, MostPopular(ps, 10), 4)
	assert.Equal(t, "A", ps[0].Name)
}

func TestRankPopular_TruncatesBeforePaginating(t *testing.T) {
	ps := []Product{
		product("1", "A", 0, 4),
		product("2", "B", 0, 3),
		product("3", "C", 0, 2),
		product("4", "D", 0, 1),
	}

	got := RankPopular(ps, PopularQuery{Top: 3, Page: Page{Number: 2, Size: 2}})
	assert.Equal(t, []string{"C"}, names(got))
}

func TestRankLowStock_PaginatesRankedResult(t *testing.T) {
	ps := []Product{
		product("1", "A", 3, 0),
		product("2", "B", 1, 0),
		product("3", "C", 2, 0),
	}

	got := RankLowStock(ps, LowStockQuery{Threshold: 5, Page: Page{Number: 1, Size: 2}})
	assert.Equal(t, []string{"B", "C"}, names(got))
}

func TestList_FilterSortPaginate(t *testing.T) {
	ps := []Product{
		product("1", "mug-c", 0, 0),
		product("2", "shirt", 0, 0),
		product("3", "mug-a", 0, 0),
		product("4", "mug-b", 0, 0),
	}

	got := List(ps, ListQuery{Name: "mug", SortBy: SortName, Page: Page{Number: 1, Size: 2}})
	assert.Equal(t, []string{"mug-a", "mug-b"}, names(got))
	assert.Equal(t, "mug-c", ps[0].Name, "source order untouched")
}
