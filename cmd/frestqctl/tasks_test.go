package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortIDTruncatesLongIDs(t *testing.T) {
	assert.Equal(t, "abcd1234", shortID("abcd1234-5678-90ab-cdef-1234567890ab"))
}

func TestShortIDLeavesShortIDsUntouched(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "abcdefgh", shortID("abcdefgh"))
}
