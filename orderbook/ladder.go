package orderbook

import (
	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
)

// ascending orders prices the natural way; BUY and SELL ladders share
// the same underlying comparator and differ only in which end of the
// tree is "best" (see Ladder.Best).
func ascending(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Ladder is a sorted price -> *PriceLevel map for one side of the
// book. It is grounded on the teacher's ShardedPriceTree (itself a
// gods/v2 red-black tree of buckets), simplified to a single tree of
// levels directly: at one-product scope the number of distinct resting
// prices is small enough that the extra bucket tier buys nothing and
// only adds a second ordered structure to keep consistent.
//
// A Ladder is not safe for concurrent use; it is owned exclusively by
// the Matcher (§5).
type Ladder struct {
	tree *rbt.Tree[uint64, *PriceLevel]
	desc bool // true for the BUY ladder: best = highest price
}

// NewLadder creates an empty ladder. desc=true yields a BUY ladder
// (best = highest price); desc=false yields a SELL ladder (best =
// lowest price).
func NewLadder(desc bool) *Ladder {
	return &Ladder{
		tree: rbt.NewWith[uint64, *PriceLevel](ascending),
		desc: desc,
	}
}

// Best returns the best (highest for BUY, lowest for SELL) non-empty
// price level, or nil if the ladder is empty.
func (l *Ladder) Best() *PriceLevel {
	if l.tree.Size() == 0 {
		return nil
	}
	var node *rbt.Node[uint64, *PriceLevel]
	if l.desc {
		node = l.tree.Right()
	} else {
		node = l.tree.Left()
	}
	if node == nil {
		return nil
	}
	return node.Value
}

// BestPrice reports the best price and whether the ladder is non-empty.
func (l *Ladder) BestPrice() (uint64, bool) {
	lvl := l.Best()
	if lvl == nil {
		return 0, false
	}
	return lvl.Price, true
}

// Level returns the level at price, or nil.
func (l *Ladder) Level(price uint64) *PriceLevel {
	lvl, found := l.tree.Get(price)
	if !found {
		return nil
	}
	return lvl
}

// LevelOrCreate returns the level at price, creating an empty one if
// absent.
func (l *Ladder) LevelOrCreate(price uint64) *PriceLevel {
	if lvl, found := l.tree.Get(price); found {
		return lvl
	}
	lvl := newPriceLevel(price)
	l.tree.Put(price, lvl)
	return lvl
}

// RemoveLevel deletes price from the ladder. Called once a level's
// sequence has become empty (§3, §4.1).
func (l *Ladder) RemoveLevel(price uint64) {
	l.tree.Remove(price)
}

// Size returns the number of distinct non-empty price levels.
func (l *Ladder) Size() int {
	return l.tree.Size()
}

// Top returns up to `levels` price levels in priority order (best
// first), without mutating the ladder. Used by depth reporting — never
// on the matching hot path.
func (l *Ladder) Top(levels int) []*PriceLevel {
	if levels <= 0 {
		return nil
	}
	out := make([]*PriceLevel, 0, levels)
	it := l.tree.Iterator()
	if l.desc {
		for it.End(); it.Prev() && len(out) < levels; {
			out = append(out, it.Value())
		}
	} else {
		for it.Begin(); it.Next() && len(out) < levels; {
			out = append(out, it.Value())
		}
	}
	return out
}
