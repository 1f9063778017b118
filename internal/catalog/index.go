package catalog

import (
	"sort"

	"quoteflow/internal"
	"quoteflow/internal/util"
)

// Index holds precomputed lookup structures over a price list. Names()
// is ordered longest-normalized-first so that a product name which is a
// substring of another ("Widget" inside "Premium Widget") never shadows
// the longer match.
type Index struct {
	prices  map[string]internal.PriceEntry
	byNorm  map[string]string
	ordered []string
}

func BuildIndex(prices map[string]internal.PriceEntry) *Index {
	idx := &Index{
		prices: prices,
		byNorm: map[string]string{},
	}

	for name := range prices {
		idx.byNorm[util.NormalizeName(name)] = name
		idx.ordered = append(idx.ordered, name)
	}

	sort.Slice(idx.ordered, func(i, j int) bool {
		ni, nj := util.NormalizeName(idx.ordered[i]), util.NormalizeName(idx.ordered[j])
		if len(ni) != len(nj) {
			return len(ni) > len(nj)
		}
		return ni < nj
	})

	return idx
}

// Names returns every catalog product name, longest normalized form first.
func (x *Index) Names() []string {
	return x.ordered
}

// Resolve maps a free-text product name to its canonical catalog key.
func (x *Index) Resolve(name string) (string, internal.PriceEntry, bool) {
	canonical, ok := x.byNorm[util.NormalizeName(name)]
	if !ok {
		return "", internal.PriceEntry{}, false
	}
	return canonical, x.prices[canonical], true
}

func (x *Index) Entry(name string) (internal.PriceEntry, bool) {
	entry, ok := x.prices[name]
	return entry, ok
}
