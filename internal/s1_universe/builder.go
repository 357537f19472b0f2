package s1_universe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
)

// Builder constructs the eligible player population
type Builder struct {
	repo   contracts.ProspectRepository
	logger *logger.Logger
}

// NewBuilder creates a new population Builder
func NewBuilder(repo contracts.ProspectRepository, log *logger.Logger) *Builder {
	return &Builder{
		repo:   repo,
		logger: log,
	}
}

// Build applies the filter to every prospect
// ⭐ SSOT: S1 → S2 대상 선수 생성
func (b *Builder) Build(ctx context.Context, filter contracts.PopulationFilter) (*contracts.Population, error) {
	filter = filter.Normalize()

	prospects, err := b.repo.ListProspects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prospects: %w", err)
	}

	pop := &contracts.Population{
		Filter:    filter,
		Prospects: make([]*contracts.Prospect, 0, len(prospects)),
		Excluded:  make(map[int64]string),
	}

	for _, p := range prospects {
		if reason := checkExclusion(p, filter); reason != "" {
			pop.Excluded[p.ID] = reason
			continue
		}
		pop.Prospects = append(pop.Prospects, p)
	}

	sort.Slice(pop.Prospects, func(i, j int) bool { return pop.Prospects[i].ID < pop.Prospects[j].ID })

	b.logger.WithFields(map[string]interface{}{
		"eligible": len(pop.Prospects),
		"excluded": len(pop.Excluded),
		"filter":   filter.Canonical(),
	}).Debug("population built")

	return pop, nil
}

// checkExclusion returns why a prospect is excluded, or "" when eligible.
// ⭐ SSOT: 필터 매칭은 여기서만 판단
func checkExclusion(p *contracts.Prospect, f contracts.PopulationFilter) string {
	// 우선순위 순서로 체크

	// 1. 데이터 이상
	if !p.Position.Valid() {
		return fmt.Sprintf("unknown position (%s)", p.Position)
	}
	if !p.Level.Valid() {
		return fmt.Sprintf("unknown level (%s)", p.Level)
	}

	// 2. 레벨
	if len(f.Levels) > 0 && !containsLevel(f.Levels, p.Level) {
		return fmt.Sprintf("level not selected (%s)", p.Level)
	}

	// 3. 포지션 그룹
	if f.Group != "" && p.Group() != f.Group {
		return fmt.Sprintf("group not selected (%s)", p.Group())
	}

	// 4. 소속 구단
	if len(f.Organizations) > 0 && !containsFold(f.Organizations, p.Organization) {
		return fmt.Sprintf("organization not selected (%s)", p.Organization)
	}

	// 5. 나이
	if f.MaxAge > 0 && p.Age > f.MaxAge {
		return fmt.Sprintf("over age limit (%d)", p.Age)
	}

	return "" // 통과
}

func containsLevel(levels []contracts.Level, l contracts.Level) bool {
	for _, x := range levels {
		if x == l {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, x := range list {
		if strings.EqualFold(strings.TrimSpace(x), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
