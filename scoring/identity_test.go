package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Run("Happy path - pads both components", func(t *testing.T) {
		assert.Equal(t, IdentityKey("01-01"), Resolve("1", "1"))
		assert.Equal(t, IdentityKey("01-01"), Resolve("01", "1"))
		assert.Equal(t, IdentityKey("01-01"), Resolve("1", "01"))
		assert.Equal(t, IdentityKey("12-07"), Resolve("12", "7"))
	})

	t.Run("Happy path - sort width uses three digits", func(t *testing.T) {
		assert.Equal(t, IdentityKey("002-010"), SortKey("2", "10"))
		assert.Equal(t, IdentityKey("002-010"), ResolveWidth("2", "10", SortWidth))
	})

	t.Run("Happy path - longer values are not truncated", func(t *testing.T) {
		assert.Equal(t, IdentityKey("123-04"), Resolve("123", "4"))
	})

	t.Run("Unhappy path - malformed input degrades to padded empty", func(t *testing.T) {
		assert.Equal(t, IdentityKey("00-00"), Resolve("", ""))
		assert.Equal(t, IdentityKey("00-03"), Resolve("abc", "3"))
		assert.Equal(t, IdentityKey("05-00"), Resolve(" 5 ", "1.5"))
		assert.Equal(t, IdentityKey("00-00"), Resolve("-1", "一"))
	})

	t.Run("Happy path - deterministic", func(t *testing.T) {
		for _, in := range [][2]string{{"", ""}, {"x", "9"}, {"3", "03"}} {
			assert.Equal(t, Resolve(in[0], in[1]), Resolve(in[0], in[1]))
		}
	})
}

func TestSortKeys(t *testing.T) {
	keys := []IdentityKey{"2-10", "10-1", "2-9", "1-2"}
	SortKeys(keys)
	assert.Equal(t, []IdentityKey{"1-2", "2-9", "2-10", "10-1"}, keys, "Digit runs should compare numerically")

	assert.Negative(t, CompareKeys("2-9", "2-10"))
	assert.Positive(t, CompareKeys("03-01", "02-12"))
	assert.Zero(t, CompareKeys("01-01", "01-01"))

	t.Run("Happy path - all zero segments sort first", func(t *testing.T) {
		keys := []IdentityKey{"100-01", "02-10", "00-00", "01-01", "02-09", "01-00"}
		SortKeys(keys)
		assert.Equal(t, []IdentityKey{"00-00", "01-00", "01-01", "02-09", "02-10", "100-01"}, keys)

		assert.Negative(t, CompareKeys("00-00", "01-01"))
		assert.Negative(t, CompareKeys("00-00", "100-01"))
		assert.Negative(t, CompareKeys("1-1", "01-01"), "Equal values fall back to the shorter spelling")
		assert.Negative(t, CompareKeys("002-010", "010-001"))
	})
}
