package orderbook

import (
	"math"

	"pickcoin_go/internal/domain"

	"github.com/google/btree"
)

// levelIndex is one book side keyed by price for tolerance lookups.
type levelIndex struct {
	tree *btree.BTreeG[domain.PriceLevel]
}

func lessByPrice(a, b domain.PriceLevel) bool {
	return a.Price < b.Price
}

// newLevelIndex indexes the valid levels of one side. Later duplicates of
// the same price replace earlier ones.
func newLevelIndex(levels []domain.PriceLevel) *levelIndex {
	tree := btree.NewG[domain.PriceLevel](16, lessByPrice)
	for _, l := range levels {
		if l.Valid() {
			tree.ReplaceOrInsert(l)
		}
	}
	return &levelIndex{tree: tree}
}

// Len returns the number of indexed levels.
func (ix *levelIndex) Len() int {
	return ix.tree.Len()
}

// Nearest returns the level closest to price whose distance is at most tol.
// Ties resolve to the lower price.
func (ix *levelIndex) Nearest(price, tol float64) (domain.PriceLevel, bool) {
	var (
		best  domain.PriceLevel
		found bool
		dist  = math.Inf(1)
	)

	ix.tree.AscendGreaterOrEqual(domain.PriceLevel{Price: price - tol}, func(l domain.PriceLevel) bool {
		if l.Price > price+tol {
			return false
		}
		if d := math.Abs(l.Price - price); d < dist {
			best, dist, found = l, d, true
		}
		return true
	})
	return best, found
}
