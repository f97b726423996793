package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestNextStreak(t *testing.T) {
	tests := []struct {
		name            string
		current, longest int
		last, now       time.Time
		wantCur, wantLong int
	}{
		{
			name:    "same day keeps streak",
			current: 3, longest: 5,
			last: day(2026, time.March, 10, 9), now: day(2026, time.March, 10, 22),
			wantCur: 3, wantLong: 5,
		},
		{
			name:    "next day extends",
			current: 3, longest: 5,
			last: day(2026, time.March, 10, 23), now: day(2026, time.March, 11, 1),
			wantCur: 4, wantLong: 5,
		},
		{
			name:    "extension raises longest",
			current: 5, longest: 5,
			last: day(2026, time.March, 10, 12), now: day(2026, time.March, 11, 12),
			wantCur: 6, wantLong: 6,
		},
		{
			name:    "two day gap resets",
			current: 9, longest: 9,
			last: day(2026, time.March, 10, 12), now: day(2026, time.March, 12, 12),
			wantCur: 1, wantLong: 9,
		},
		{
			name:    "long gap resets",
			current: 4, longest: 7,
			last: day(2026, time.January, 1, 0), now: day(2026, time.June, 1, 0),
			wantCur: 1, wantLong: 7,
		},
		{
			name:    "calendar day boundary not 24h",
			current: 1, longest: 1,
			last: day(2026, time.March, 10, 23), now: day(2026, time.March, 11, 0),
			wantCur: 2, wantLong: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, long := NextStreak(tt.current, tt.longest, tt.last, tt.now)
			assert.Equal(t, tt.wantCur, cur)
			assert.Equal(t, tt.wantLong, long)
		})
	}
}
