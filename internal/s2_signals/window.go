package s2_signals

import (
	"time"

	"github.com/wonny/scout/internal/contracts"
)

// WindowParams are the windowing knobs of a scoring configuration
type WindowParams struct {
	RollingWindowDays     int
	FullSeasonTriggerDays int
}

// SelectWindow decides which date range of a (season, level) is current.
//
// The full season is used once the level stopped playing: its last game is
// more than FullSeasonTriggerDays before ref and the canonical end date, if
// published, has passed. Otherwise the rolling window covers the last
// RollingWindowDays calendar days, ref included. firstGame may be zero.
func SelectWindow(info *contracts.SeasonInfo, firstGame, ref time.Time, p WindowParams) contracts.Window {
	refDay := contracts.TruncateDay(ref)

	w := contracts.Window{
		Level: info.Level,
		From:  refDay.AddDate(0, 0, -(p.RollingWindowDays - 1)),
		To:    refDay,
	}

	if !seasonEnded(info, refDay, p.FullSeasonTriggerDays) {
		return w
	}

	// 시즌 종료: 시즌 전체 사용 (시작일 또는 첫 경기 중 빠른 날)
	from := contracts.TruncateDay(info.StartDate)
	if !firstGame.IsZero() {
		fg := contracts.TruncateDay(firstGame)
		if info.StartDate.IsZero() || fg.Before(from) {
			from = fg
		}
	}
	w.From = from
	w.IsFullSeason = true
	return w
}

// seasonEnded reports whether no games arrived for more than triggerDays
// and the canonical end (when known) is behind refDay
func seasonEnded(info *contracts.SeasonInfo, refDay time.Time, triggerDays int) bool {
	if info.LastGameDate.IsZero() {
		return false
	}
	lastGame := contracts.TruncateDay(info.LastGameDate)
	idle := refDay.Sub(lastGame)
	if idle <= time.Duration(triggerDays)*24*time.Hour {
		return false
	}
	if info.EndDate != nil && !contracts.TruncateDay(*info.EndDate).Before(refDay) {
		return false
	}
	return true
}
