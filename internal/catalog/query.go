package catalog

import (
	"cmp"
	"slices"
	"sort"
	"strings"

	"MiniCatalog/pkg/kit"
)

// Everything in this file is pure: inputs are never modified and every
// result is a fresh slice.

type SortField string

const (
	SortNone          SortField = ""
	SortID            SortField = "id"
	SortName          SortField = "name"
	SortDescription   SortField = "description"
	SortPrice         SortField = "price"
	SortQuantity      SortField = "quantity"
	SortSold          SortField = "sold"
	SortPendingOrders SortField = "pending_orders"
	SortCreatedAt     SortField = "created_at"
	SortUpdatedAt     SortField = "updated_at"
)

var sortComparators = map[SortField]func(a, b Product) int{
	SortID:            func(a, b Product) int { return strings.Compare(a.ID, b.ID) },
	SortName:          func(a, b Product) int { return strings.Compare(a.Name, b.Name) },
	SortDescription:   func(a, b Product) int { return strings.Compare(a.Description, b.Description) },
	SortPrice:         func(a, b Product) int { return cmp.Compare(a.Price, b.Price) },
	SortQuantity:      func(a, b Product) int { return cmp.Compare(a.Quantity, b.Quantity) },
	SortSold:          func(a, b Product) int { return cmp.Compare(a.Sold, b.Sold) },
	SortPendingOrders: func(a, b Product) int { return cmp.Compare(a.PendingOrders, b.PendingOrders) },
	SortCreatedAt:     func(a, b Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
	SortUpdatedAt:     func(a, b Product) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

// ParseSortField rejects names outside the sortable set. Empty means unsorted.
func ParseSortField(name string) (SortField, error) {
	f := SortField(name)
	if f == SortNone {
		return SortNone, nil
	}
	if _, ok := sortComparators[f]; !ok {
		return SortNone, kit.Validationf("sortBy must be one of: %s", strings.Join(sortFieldNames(), ", "))
	}
	return f, nil
}

func sortFieldNames() []string {
	names := make([]string, 0, len(sortComparators))
	for f := range sortComparators {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// Page is a 1-indexed window. It applies whenever Size is set; a Number
// below 1 selects nothing.
type Page struct {
	Number int
	Size   int
}

func (p Page) Enabled() bool { return p.Size > 0 }

type ListQuery struct {
	Name        string
	Description string
	SortBy      SortField
	Page        Page
}

type LowStockQuery struct {
	Threshold int
	Page      Page
}

type PopularQuery struct {
	Top  int // 0 keeps every product
	Page Page
}

// Filter keeps products whose name and description contain the given
// substrings. Empty filters match everything.
func Filter(products []Product, name, description string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if name != "" && !strings.Contains(p.Name, name) {
			continue
		}
		if description != "" && !strings.Contains(p.Description, description) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortBy orders ascending by field. Equal keys keep their relative order.
func SortBy(products []Product, field SortField) []Product {
	out := clone(products)
	if c, ok := sortComparators[field]; ok {
		slices.SortStableFunc(out, c)
	}
	return out
}

// Paginate returns the [(n-1)*size, n*size) window. Windows past the end are
// empty, never an error.
func Paginate(products []Product, p Page) []Product {
	if !p.Enabled() {
		return clone(products)
	}

	// bounds are checked on page indexes; offsets are only computed in range
	pages := len(products) / p.Size
	if len(products)%p.Size != 0 {
		pages++
	}
	if p.Number < 1 || p.Number > pages {
		return []Product{}
	}

	start := (p.Number - 1) * p.Size
	end := start + min(p.Size, len(products)-start)
	return clone(products[start:end])
}

// LowStock keeps products with quantity <= threshold, ascending by quantity.
func LowStock(products []Product, threshold int) []Product {
	out := make([]Product, 0)
	for _, p := range products {
		if p.Quantity <= threshold {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, sortComparators[SortQuantity])
	return out
}

// MostPopular orders descending by sold and keeps the first top entries.
func MostPopular(products []Product, top int) []Product {
	out := clone(products)
	slices.SortStableFunc(out, func(a, b Product) int { return cmp.Compare(b.Sold, a.Sold) })
	if top > 0 && top < len(out) {
		out = out[:top]
	}
	return out
}

// List composes filter, sort and paginate in that order.
func List(products []Product, q ListQuery) []Product {
	out := Filter(products, q.Name, q.Description)
	out = SortBy(out, q.SortBy)
	return Paginate(out, q.Page)
}

func RankLowStock(products []Product, q LowStockQuery) []Product {
	return Paginate(LowStock(products, q.Threshold), q.Page)
}

func RankPopular(products []Product, q PopularQuery) []Product {
	return Paginate(MostPopular(products, q.Top), q.Page)
}

// clone never returns nil so empty results encode as [].
func clone(products []Product) []Product {
	return append(make([]Product, 0, len(products)), products...)
}
