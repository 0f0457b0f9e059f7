package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSatisfactory(t *testing.T) {
	for _, s := range []string{"ok", "OK", "yes", "true", "sat"} {
		got, err := parseSatisfactory(s)
		require.NoError(t, err)
		assert.True(t, got, s)
	}
	for _, s := range []string{"miss", "no", "false", "unsat"} {
		got, err := parseSatisfactory(s)
		require.NoError(t, err)
		assert.False(t, got, s)
	}
	_, err := parseSatisfactory("maybe")
	assert.Error(t, err)
}

func TestParseDay(t *testing.T) {
	loc := time.UTC
	d, err := parseDay("2021-10-01", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 10, 1, 0, 0, 0, 0, loc), d)

	today, err := parseDay("today", loc)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), today, time.Minute)

	_, err = parseDay("10/01/2021", loc)
	assert.Error(t, err)
}

func TestParseEdit(t *testing.T) {
	n, flag, err := parseEdit("2=ok", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, flag)

	n, flag, err = parseEdit("1=miss", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, flag)

	_, _, err = parseEdit("4=ok", 3)
	assert.Error(t, err, "index past the window must be rejected")
	_, _, err = parseEdit("0=ok", 3)
	assert.Error(t, err)
	_, _, err = parseEdit("2", 3)
	assert.Error(t, err)
	_, _, err = parseEdit("2=maybe", 3)
	assert.Error(t, err)
}
