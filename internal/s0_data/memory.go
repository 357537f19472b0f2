package s0_data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/wonny/scout/internal/contracts"
)

// MemorySource is an in-memory contracts.RawSource.
// Backs unit tests and fixture-driven CLI runs.
type MemorySource struct {
	mu        sync.RWMutex
	prospects map[int64]*contracts.Prospect
	gameLogs  []*contracts.GameLogRecord
	seasons   []*contracts.SeasonInfo
	advanced  []*contracts.AdvancedMetricRecord
	grades    []*contracts.ScoutingGrade
	attention []*contracts.AttentionEvent
	latest    map[contracts.DataCategory]time.Time
}

// NewMemorySource creates an empty source
func NewMemorySource() *MemorySource {
	return &MemorySource{
		prospects: make(map[int64]*contracts.Prospect),
		latest:    make(map[contracts.DataCategory]time.Time),
	}
}

// Fixture is the JSON layout accepted by LoadFixture
type Fixture struct {
	Prospects []*contracts.Prospect             `json:"prospects"`
	GameLogs  []*contracts.GameLogRecord        `json:"game_logs"`
	Seasons   []*contracts.SeasonInfo           `json:"seasons"`
	Advanced  []*contracts.AdvancedMetricRecord `json:"advanced_metrics"`
	Grades    []*contracts.ScoutingGrade        `json:"grades"`
	Attention []*contracts.AttentionEvent       `json:"attention"`
}

// LoadFixture reads a JSON fixture into a new MemorySource
func LoadFixture(path string) (*MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return DecodeFixture(data)
}

// DecodeFixture decodes a JSON fixture into a new MemorySource
func DecodeFixture(data []byte) (*MemorySource, error) {
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	src := NewMemorySource()
	src.AddProspects(fx.Prospects...)
	src.AddSeasons(fx.Seasons...)
	src.AddGameLogs(fx.GameLogs...)
	src.AddAdvancedMetrics(fx.Advanced...)
	src.AddGrades(fx.Grades...)
	src.AddAttention(fx.Attention...)
	return src, nil
}

// === ingestion side (tests / fixtures) ===

// AddProspects upserts prospects
func (m *MemorySource) AddProspects(ps ...*contracts.Prospect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range ps {
		m.prospects[p.ID] = p
		m.touch(contracts.CategoryProspects, p.UpdatedAt)
	}
}

// AddGameLogs appends game rows
func (m *MemorySource) AddGameLogs(gs ...*contracts.GameLogRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range gs {
		m.gameLogs = append(m.gameLogs, g)
		m.touch(contracts.CategoryGameLogs, g.IngestedAt)
	}
}

// AddSeasons appends season calendars
func (m *MemorySource) AddSeasons(ss ...*contracts.SeasonInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seasons = append(m.seasons, ss...)
}

// AddAdvancedMetrics appends measured metric rows.
// Rows carry no ingestion time: use SetIngested to advance the snapshot.
func (m *MemorySource) AddAdvancedMetrics(rs ...*contracts.AdvancedMetricRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanced = append(m.advanced, rs...)
}

// AddGrades appends scouting grades
func (m *MemorySource) AddGrades(gs ...*contracts.ScoutingGrade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grades = append(m.grades, gs...)
}

// AddAttention appends attention events
func (m *MemorySource) AddAttention(es ...*contracts.AttentionEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range es {
		m.attention = append(m.attention, e)
		m.touch(contracts.CategoryAttention, e.OccurredAt)
	}
}

// SetIngested overrides the ingestion timestamp of a category
func (m *MemorySource) SetIngested(c contracts.DataCategory, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[c] = ts.UTC()
}

// touch advances the category timestamp
func (m *MemorySource) touch(c contracts.DataCategory, ts time.Time) {
	if ts.UTC().After(m.latest[c]) {
		m.latest[c] = ts.UTC()
	}
}

// === contracts.RawSource ===

// ListProspects returns every prospect ordered by id
func (m *MemorySource) ListProspects(ctx context.Context) ([]*contracts.Prospect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*contracts.Prospect, 0, len(m.prospects))
	for _, p := range m.prospects {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetProspect returns one prospect
func (m *MemorySource) GetProspect(ctx context.Context, id int64) (*contracts.Prospect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.prospects[id]
	if !ok {
		return nil, fmt.Errorf("prospect %d: %w", id, contracts.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// GetGameLogs returns the season rows of the given players
func (m *MemorySource) GetGameLogs(ctx context.Context, playerIDs []int64, season int) ([]*contracts.GameLogRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := idSet(playerIDs)
	var out []*contracts.GameLogRecord
	for _, g := range m.gameLogs {
		if g.Season == season && want[g.PlayerID] {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].GameDate.Before(out[j].GameDate)
	})
	return out, nil
}

// GetSeasons returns the calendars of a season.
// A zero LastGameDate is filled from the stored game logs.
func (m *MemorySource) GetSeasons(ctx context.Context, season int) ([]*contracts.SeasonInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*contracts.SeasonInfo
	for _, s := range m.seasons {
		if s.Season != season {
			continue
		}
		cp := *s
		if cp.LastGameDate.IsZero() {
			cp.LastGameDate = cp.StartDate
			for _, g := range m.gameLogs {
				if g.Season == season && g.Level == cp.Level && g.GameDate.After(cp.LastGameDate) {
					cp.LastGameDate = g.GameDate
				}
			}
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

// GetAdvancedMetrics returns the season's rows with position and age joined
func (m *MemorySource) GetAdvancedMetrics(ctx context.Context, season int) ([]*contracts.AdvancedMetricRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*contracts.AdvancedMetricRecord
	for _, r := range m.advanced {
		if r.Season != season {
			continue
		}
		cp := *r
		cp.Values = make(map[contracts.MetricField]float64, len(r.Values))
		for k, v := range r.Values {
			cp.Values[k] = v
		}
		if p, ok := m.prospects[r.PlayerID]; ok {
			cp.Position = p.Position
			cp.Age = p.Age
		}
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].Level < out[j].Level
	})
	return out, nil
}

// GetGrades returns every grade of the given players
func (m *MemorySource) GetGrades(ctx context.Context, playerIDs []int64) ([]*contracts.ScoutingGrade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := idSet(playerIDs)
	var out []*contracts.ScoutingGrade
	for _, g := range m.grades {
		if want[g.PlayerID] {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

// GetAttentionEvents returns the events of the given players inside [from, to]
func (m *MemorySource) GetAttentionEvents(ctx context.Context, playerIDs []int64, from, to time.Time) ([]*contracts.AttentionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := idSet(playerIDs)
	var out []*contracts.AttentionEvent
	for _, e := range m.attention {
		if !want[e.PlayerID] || e.OccurredAt.Before(from) || e.OccurredAt.After(to) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// LatestIngested returns the newest ingestion timestamp of each category
func (m *MemorySource) LatestIngested(ctx context.Context) (map[contracts.DataCategory]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[contracts.DataCategory]time.Time, len(m.latest))
	for k, v := range m.latest {
		out[k] = v
	}
	return out, nil
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
