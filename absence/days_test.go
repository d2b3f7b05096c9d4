package absence_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pliniou/Project-Ausencias/absence"
	"github.com/pliniou/Project-Ausencias/dates"
)

func TestCountDays(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"2026-03-10", "2026-03-10", 1},
		{"2026-03-10", "2026-03-20", 11},
		{"2026-02-27", "2026-03-02", 4}, // across a month boundary
		{"2026-01-01", "2026-01-30", 30},
	}

	for _, tt := range tests {
		got, err := absence.CountDays(dates.MustParse(tt.start), dates.MustParse(tt.end))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "CountDays(%s, %s)", tt.start, tt.end)
	}
}

func TestCountDays_InvalidRange(t *testing.T) {
	_, err := absence.CountDays(dates.MustParse("2026-03-20"), dates.MustParse("2026-03-10"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, absence.ErrInvalidRange))
}

func TestEfficiency(t *testing.T) {
	assert.Equal(t, "72.7", absence.Efficiency(8, 11).String())
	assert.Equal(t, "100", absence.Efficiency(10, 10).String())
	assert.True(t, absence.Efficiency(5, 0).IsZero())
}
