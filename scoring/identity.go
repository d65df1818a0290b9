package scoring

import (
	"cmp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// IdentityKey groups every submission that scores the same candidate.
// It is derived from the group number and the in-group index, never stored.
type IdentityKey string

const (
	// DisplayWidth is used for keys shown to people and for grouping.
	DisplayWidth = 2
	// SortWidth keeps keys lexicographically stable up to 999 groups.
	SortWidth = 3
)

// Resolve returns the display identity key ("01-03") for the raw group and index.
func Resolve(rawGroup, rawIndex string) IdentityKey {
	return ResolveWidth(rawGroup, rawIndex, DisplayWidth)
}

// SortKey returns the three digit form used when ordering exports.
func SortKey(rawGroup, rawIndex string) IdentityKey {
	return ResolveWidth(rawGroup, rawIndex, SortWidth)
}

// ResolveWidth pads both components to width. Non-numeric input is treated as the
// empty string, so malformed fields collapse into the "00-00" style bucket instead
// of failing.
func ResolveWidth(rawGroup, rawIndex string, width int) IdentityKey {
	return IdentityKey(normalize(rawGroup, width) + "-" + normalize(rawIndex, width))
}

func normalize(raw string, width int) string {
	v := strings.TrimSpace(raw)
	if !isDigits(v) {
		v = ""
	}
	if len(v) >= width {
		return v
	}
	return strings.Repeat("0", width-len(v)) + v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// keyComparer orders identity keys one hyphen-separated segment at a time. Digit
// segments compare by value, so "2-10" sorts after "2-9" and "00-00" sorts first.
// Anything else falls back to the collator, which is not safe for concurrent use;
// create one comparer per sort.
type keyComparer struct {
	col *collate.Collator
}

func newKeyComparer() keyComparer {
	return keyComparer{col: collate.New(language.Und, collate.Numeric)}
}

func (k keyComparer) compare(a, b string) int {
	as, bs := strings.Split(a, "-"), strings.Split(b, "-")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := k.segment(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(as), len(bs))
}

func (k keyComparer) segment(a, b string) int {
	if !isDigits(a) || !isDigits(b) {
		return k.col.CompareString(a, b)
	}
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(ta), len(tb)); c != 0 {
		return c
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	// "1" and "01" are the same value; the shorter spelling goes first.
	return cmp.Compare(len(a), len(b))
}

// CompareKeys orders identity keys numerically.
func CompareKeys(a, b string) int {
	return newKeyComparer().compare(a, b)
}

// SortKeys sorts keys in place using numeric-aware ordering.
func SortKeys(keys []IdentityKey) {
	SortBy(keys, func(k IdentityKey) IdentityKey { return k })
}

// SortBy stably orders items by the numeric-aware order of their keys.
func SortBy[T any](items []T, key func(T) IdentityKey) {
	k := newKeyComparer()
	sort.SliceStable(items, func(i, j int) bool {
		return k.compare(string(key(items[i])), string(key(items[j]))) < 0
	})
}
