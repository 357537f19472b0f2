package s2_signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scout/internal/contracts"
)

var defaultWindow = WindowParams{RollingWindowDays: 60, FullSeasonTriggerDays: 14}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSelectWindow(t *testing.T) {
	ref := day(2026, 9, 30)
	end := day(2026, 9, 5)
	future := day(2026, 10, 5)

	tests := []struct {
		name      string
		info      contracts.SeasonInfo
		firstGame time.Time
		wantFull  bool
		wantFrom  time.Time
	}{
		{
			name:     "last game 20 days ago, no end date",
			info:     contracts.SeasonInfo{Level: contracts.LevelAA, StartDate: day(2026, 4, 3), LastGameDate: ref.AddDate(0, 0, -20)},
			wantFull: true,
			wantFrom: day(2026, 4, 3),
		},
		{
			name:     "last game 14 days ago stays rolling",
			info:     contracts.SeasonInfo{Level: contracts.LevelAA, StartDate: day(2026, 4, 3), LastGameDate: ref.AddDate(0, 0, -14)},
			wantFull: false,
			wantFrom: ref.AddDate(0, 0, -59),
		},
		{
			name:     "active season",
			info:     contracts.SeasonInfo{Level: contracts.LevelAAA, StartDate: day(2026, 3, 28), LastGameDate: ref.AddDate(0, 0, -1)},
			wantFull: false,
			wantFrom: ref.AddDate(0, 0, -59),
		},
		{
			name:     "ended with canonical end date",
			info:     contracts.SeasonInfo{Level: contracts.LevelA, StartDate: day(2026, 4, 5), EndDate: &end, LastGameDate: end},
			wantFull: true,
			wantFrom: day(2026, 4, 5),
		},
		{
			name:     "idle but canonical end not reached",
			info:     contracts.SeasonInfo{Level: contracts.LevelA, StartDate: day(2026, 4, 5), EndDate: &future, LastGameDate: ref.AddDate(0, 0, -30)},
			wantFull: false,
			wantFrom: ref.AddDate(0, 0, -59),
		},
		{
			name:      "first game before calendar start",
			info:      contracts.SeasonInfo{Level: contracts.LevelAA, StartDate: day(2026, 4, 3), LastGameDate: ref.AddDate(0, 0, -40)},
			firstGame: day(2026, 3, 30),
			wantFull:  true,
			wantFrom:  day(2026, 3, 30),
		},
		{
			name:     "no games observed",
			info:     contracts.SeasonInfo{Level: contracts.LevelAA, StartDate: day(2026, 4, 3)},
			wantFull: false,
			wantFrom: ref.AddDate(0, 0, -59),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := SelectWindow(&tt.info, tt.firstGame, ref.Add(15*time.Hour), defaultWindow)
			assert.Equal(t, tt.wantFull, w.IsFullSeason)
			assert.Equal(t, tt.wantFrom, w.From)
			assert.Equal(t, ref, w.To)
			assert.Equal(t, tt.info.Level, w.Level)
		})
	}
}

func TestWindow_Contains(t *testing.T) {
	w := contracts.Window{From: day(2026, 8, 1), To: day(2026, 8, 31)}

	assert.True(t, w.Contains(day(2026, 8, 1)))
	assert.True(t, w.Contains(day(2026, 8, 31).Add(23*time.Hour)))
	assert.False(t, w.Contains(day(2026, 7, 31)))
	assert.False(t, w.Contains(day(2026, 9, 1)))
}

func TestWindow_RollingCoversExactDays(t *testing.T) {
	ref := day(2026, 9, 30)
	info := &contracts.SeasonInfo{Season: 2026, Level: contracts.LevelAA, StartDate: day(2026, 4, 3), LastGameDate: ref}

	w := SelectWindow(info, time.Time{}, ref, defaultWindow)
	require.False(t, w.IsFullSeason)
	assert.Equal(t, day(2026, 8, 2), w.From)

	days := 0
	for d := day(2026, 7, 1); !d.After(ref); d = d.AddDate(0, 0, 1) {
		if w.Contains(d) {
			days++
		}
	}
	assert.Equal(t, 60, days)
	assert.False(t, w.Contains(day(2026, 8, 1)))

	one := SelectWindow(info, time.Time{}, ref, WindowParams{RollingWindowDays: 1, FullSeasonTriggerDays: 14})
	assert.Equal(t, ref, one.From)
}
