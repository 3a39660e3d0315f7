package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	t.Run("identical strings", func(t *testing.T) {
		assert.Equal(t, 1.0, Ratio("janedoe", "janedoe"))
		assert.Equal(t, 1.0, Ratio("", ""))
	})

	t.Run("one side empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Ratio("janedoe", ""))
		assert.Equal(t, 0.0, Ratio("", "janedoe"))
	})

	t.Run("disjoint strings", func(t *testing.T) {
		assert.Equal(t, 0.0, Ratio("abc", "xyz"))
	})

	t.Run("partial overlap", func(t *testing.T) {
		// longest block "bcd", nothing else matches: 2*3/8
		assert.InDelta(t, 0.75, Ratio("abcd", "bcde"), 1e-9)
	})

	t.Run("single dropped letter", func(t *testing.T) {
		// "jan" + "doe" match: 2*6/13
		assert.InDelta(t, 12.0/13.0, Ratio("jandoe", "janedoe"), 1e-9)
	})

	t.Run("transposed halves", func(t *testing.T) {
		// only the longest block "jane" counts once: 2*4/14
		assert.InDelta(t, 8.0/14.0, Ratio("janedoe", "doejane"), 1e-9)
	})

	t.Run("near identical names clear the dedup threshold", func(t *testing.T) {
		assert.GreaterOrEqual(t, Ratio("nicolasdenoyer", "nicholasdenoyer"), 0.88)
		assert.Less(t, Ratio("janedoe", "johnsmith"), 0.88)
	})

	t.Run("multibyte runes", func(t *testing.T) {
		// length counts runes, so the accent costs one rune not two bytes
		assert.Equal(t, 1.0, Ratio("josé", "josé"))
		assert.InDelta(t, 2.0*3.0/8.0, Ratio("josé", "jose"), 1e-9)
	})
}
