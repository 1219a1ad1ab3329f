package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringList(t *testing.T) {
	assert.Nil(t, parseStringList(""))
	assert.Equal(t, []string{"a", "b"}, parseStringList(" a, ,b "))
}

func TestParseSinceTime(t *testing.T) {
	from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseSinceTime("30m", from)
	require.NoError(t, err)
	assert.Equal(t, from.Add(-30*time.Minute), got)

	got, err = parseSinceTime("2024-04-30T10:00:00Z", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 30, 10, 0, 0, 0, time.UTC), got)

	_, err = parseSinceTime("yesterday", from)
	assert.Error(t, err)
}

func TestWorldFilter(t *testing.T) {
	assert.True(t, newWorldFilter(nil).match("any"))

	f := newWorldFilter([]string{"w1"})
	assert.True(t, f.match("w1"))
	assert.False(t, f.match("w2"))
}
