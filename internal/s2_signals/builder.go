package s2_signals

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/scoringconfig"
	"github.com/wonny/scout/pkg/logger"
	"github.com/wonny/scout/pkg/metrics"
)

// Reader is the raw data the signal builder needs
type Reader interface {
	contracts.GameLogRepository
	contracts.SeasonRepository
	contracts.AdvancedMetricRepository
	contracts.GradeRepository
	contracts.AttentionRepository
}

// Builder orchestrates all signal calculators to generate SignalSet
// ⭐ SSOT: 시그널 생성 오케스트레이션은 여기서만
type Builder struct {
	performance *PerformanceCalculator
	imputation  *ImputationEngine
	grades      *GradeNormalizer
	hype        *HypeCalculator

	repo        Reader
	concurrency int
	metrics     *metrics.Recorder
	logger      *logger.Logger
}

// NewBuilder creates a new signal builder
func NewBuilder(repo Reader, concurrency int, rec *metrics.Recorder, log *logger.Logger) *Builder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Builder{
		performance: NewPerformanceCalculator(log),
		imputation:  NewImputationEngine(log),
		grades:      NewGradeNormalizer(log),
		hype:        NewHypeCalculator(log),
		repo:        repo,
		concurrency: concurrency,
		metrics:     rec,
		logger:      log,
	}
}

// rawInputs holds one computation's batched reads, grouped by player
type rawInputs struct {
	season    int
	seasons   map[contracts.Level]*contracts.SeasonInfo
	gameLogs  map[int64][]*contracts.GameLogRecord
	grades    map[int64][]*contracts.ScoutingGrade
	attention map[int64][]*contracts.AttentionEvent
	index     *ComparableIndex
}

// Build generates the SignalSet of every player in the population.
// Per-player component failures degrade that player only; read failures abort.
func (b *Builder) Build(ctx context.Context, cfg *scoringconfig.Config, pop *contracts.Population, snap *contracts.DataSnapshot) (*contracts.SignalSet, error) {
	b.logger.WithFields(map[string]interface{}{
		"config_id":    cfg.ID(),
		"snapshot_id":  snap.ID(),
		"player_count": pop.Count(),
	}).Info("Starting signal generation")

	raw, err := b.fetch(ctx, cfg, pop, snap)
	if err != nil {
		return nil, err
	}

	// 선수별 병렬 계산: 읽기 전용 입력, 인덱스별 결과 슬롯
	results := make([]*contracts.PlayerSignals, len(pop.Prospects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, p := range pop.Prospects {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.calculatePlayer(cfg, p, raw, snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 고급 지표 z-score는 전체 모집단 기준 (직렬 단계)
	profiles := make([]*contracts.AdvancedProfile, 0, len(results))
	for _, s := range results {
		if s.Advanced != nil {
			profiles = append(profiles, s.Advanced)
		}
	}
	ScoreAdvanced(profiles)

	set := &contracts.SignalSet{
		SnapshotID: snap.ID(),
		Signals:    make(map[int64]*contracts.PlayerSignals, len(results)),
	}
	unavailable := 0
	for _, s := range results {
		set.Signals[s.PlayerID] = s
		for c := range s.Unavailable {
			b.metrics.ComponentUnavailable(string(c))
			unavailable++
		}
	}

	b.logger.WithFields(map[string]interface{}{
		"total":       len(results),
		"season":      raw.season,
		"unavailable": unavailable,
	}).Info("Signal generation completed")

	return set, nil
}

// calculatePlayer runs the independent calculators for one player
func (b *Builder) calculatePlayer(cfg *scoringconfig.Config, p *contracts.Prospect, raw *rawInputs, snap *contracts.DataSnapshot) *contracts.PlayerSignals {
	s := &contracts.PlayerSignals{
		PlayerID: p.ID,
		Group:    p.Group(),
	}

	// 1. Performance
	lines, chosen, err := b.performance.Calculate(p, raw.gameLogs[p.ID], raw.seasons, snap.ReferenceDate, PerformanceParams{
		Window: WindowParams{
			RollingWindowDays:     cfg.RollingWindowDays,
			FullSeasonTriggerDays: cfg.FullSeasonTriggerDays,
		},
		MinSampleSize:     cfg.MinSampleSize,
		MinInningsPitched: cfg.MinInningsPitched,
	})
	s.Lines = lines
	s.Performance = chosen
	if err != nil {
		s.MarkUnavailable(contracts.ComponentPerformance, err.Error())
	}

	// 2. Advanced metrics (measured + imputed)
	profile, fieldErrs := b.imputation.Resolve(p, raw.index, ImputationParams{
		MinComparableGroupSize: cfg.MinComparableGroupSize,
		AgeBandYears:           cfg.AgeBandYears,
	})
	s.Advanced = profile
	if profile.AvailableCount() == 0 {
		reason := "no measured or imputable field"
		if len(fieldErrs) > 0 {
			reason = fieldErrs[0].Error()
		}
		s.MarkUnavailable(contracts.ComponentAdvanced, reason)
	}

	// 3. Scouting grade
	grade, warning := b.grades.Normalize(p.ID, raw.grades[p.ID], raw.season, cfg.StaleGradeYears)
	s.Grade = grade
	if grade == nil {
		s.MarkUnavailable(contracts.ComponentGrade, "no usable scouting grade")
	}
	if warning != nil {
		s.Warnings = append(s.Warnings, warning.Error())
	}

	// 4. Hype
	hype := b.hype.Calculate(p.ID, raw.attention[p.ID], snap.AsOf(), HypeParams{
		HalfLifeDays:    cfg.HalfLifeDays,
		LookbackDays:    cfg.LookbackDays,
		TrendWindowDays: cfg.TrendWindowDays,
		SourceWeight:    cfg.SourceWeights.For,
	})
	s.Hype = hype
	if hype.Provenance == contracts.ProvenanceNoSignal {
		s.MarkUnavailable(contracts.ComponentHype, "no attention events in lookback")
	}

	return s
}

// fetch performs the batched reads of one computation
func (b *Builder) fetch(ctx context.Context, cfg *scoringconfig.Config, pop *contracts.Population, snap *contracts.DataSnapshot) (*rawInputs, error) {
	ids := pop.IDs()

	season, calendars, err := b.resolveSeason(ctx, snap.Season())
	if err != nil {
		return nil, err
	}

	raw := &rawInputs{
		season:    season,
		seasons:   make(map[contracts.Level]*contracts.SeasonInfo, len(calendars)),
		gameLogs:  make(map[int64][]*contracts.GameLogRecord),
		grades:    make(map[int64][]*contracts.ScoutingGrade),
		attention: make(map[int64][]*contracts.AttentionEvent),
	}
	for _, s := range calendars {
		raw.seasons[s.Level] = s
	}

	logs, err := b.repo.GetGameLogs(ctx, ids, season)
	if err != nil {
		return nil, fmt.Errorf("fetch game logs: %w", err)
	}
	for _, r := range logs {
		raw.gameLogs[r.PlayerID] = append(raw.gameLogs[r.PlayerID], r)
	}

	advanced, err := b.repo.GetAdvancedMetrics(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetch advanced metrics: %w", err)
	}
	raw.index = NewComparableIndex(season, advanced)

	grades, err := b.repo.GetGrades(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch grades: %w", err)
	}
	for _, g := range grades {
		raw.grades[g.PlayerID] = append(raw.grades[g.PlayerID], g)
	}

	asOf := snap.AsOf()
	events, err := b.repo.GetAttentionEvents(ctx, ids, asOf.AddDate(0, 0, -cfg.LookbackDays), asOf)
	if err != nil {
		return nil, fmt.Errorf("fetch attention events: %w", err)
	}
	for _, e := range events {
		raw.attention[e.PlayerID] = append(raw.attention[e.PlayerID], e)
	}
	// 합산 순서 고정 (부동소수점 재현성)
	for _, es := range raw.attention {
		contracts.SortAttention(es)
	}

	return raw, nil
}

// resolveSeason uses the reference year, or the previous one while the new
// season has no calendar yet (off-season)
func (b *Builder) resolveSeason(ctx context.Context, year int) (int, []*contracts.SeasonInfo, error) {
	calendars, err := b.repo.GetSeasons(ctx, year)
	if err != nil {
		return 0, nil, fmt.Errorf("fetch seasons: %w", err)
	}
	if len(calendars) > 0 {
		return year, calendars, nil
	}

	prev, err := b.repo.GetSeasons(ctx, year-1)
	if err != nil {
		return 0, nil, fmt.Errorf("fetch seasons: %w", err)
	}
	if len(prev) > 0 {
		b.logger.WithField("season", year-1).Debug("no calendar for reference year, using previous season")
		return year - 1, prev, nil
	}
	return year, nil, nil
}
