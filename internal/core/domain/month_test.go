package domain_test

import (
	"testing"
	"time"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := domain.ParseMonth("2025-03")
		require.NoError(t, err)
		assert.Equal(t, 2025, m.Year)
		assert.Equal(t, time.March, m.Month)
		assert.Equal(t, "2025-03", m.String())
	})

	t.Run("invalid formats", func(t *testing.T) {
		for _, s := range []string{"", "2025", "2025-13", "03-2025", "2025-3", "2025-03-01"} {
			_, err := domain.ParseMonth(s)
			assert.Error(t, err, "input %q", s)
		}
	})
}

func TestMonth_Bounds(t *testing.T) {
	m := domain.Month{Year: 2025, Month: time.January}
	start, end := m.Bounds()
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), end)

	t.Run("december rolls into the next year", func(t *testing.T) {
		dec := domain.Month{Year: 2024, Month: time.December}
		_, end := dec.Bounds()
		assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)
	})
}

func TestMonth_Contains(t *testing.T) {
	m := domain.Month{Year: 2025, Month: time.January}

	assert.True(t, m.Contains(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, m.Contains(time.Date(2025, time.January, 31, 23, 59, 59, 0, time.UTC)))
	// The upper bound is exclusive.
	assert.False(t, m.Contains(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, m.Contains(time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC)))

	t.Run("evaluates in UTC", func(t *testing.T) {
		// 2025-01-31 23:00 -02:00 is 2025-02-01 01:00 UTC, outside January.
		loc := time.FixedZone("W", -2*60*60)
		assert.False(t, m.Contains(time.Date(2025, time.January, 31, 23, 0, 0, 0, loc)))
	})
}

func TestMonth_Next(t *testing.T) {
	assert.Equal(t, domain.Month{Year: 2025, Month: time.February}, domain.Month{Year: 2025, Month: time.January}.Next())
	assert.Equal(t, domain.Month{Year: 2026, Month: time.January}, domain.Month{Year: 2025, Month: time.December}.Next())
}

func TestMonthOf(t *testing.T) {
	loc := time.FixedZone("E", 3*60*60)
	// 2025-03-01 01:00 +03:00 is 2025-02-28 22:00 UTC.
	m := domain.MonthOf(time.Date(2025, time.March, 1, 1, 0, 0, 0, loc))
	assert.Equal(t, domain.Month{Year: 2025, Month: time.February}, m)
}
