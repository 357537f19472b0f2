package brain

import (
	"context"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/scoringconfig"
)

// UniverseBuilder resolves the population of a filter (S1)
// ⭐ SSOT: S1 모집단 생성 인터페이스
type UniverseBuilder interface {
	Build(ctx context.Context, filter contracts.PopulationFilter) (*contracts.Population, error)
}

// SignalBuilder derives per-player signals (S2)
// ⭐ SSOT: S2 시그널 생성 인터페이스
type SignalBuilder interface {
	Build(ctx context.Context, cfg *scoringconfig.Config, pop *contracts.Population, snap *contracts.DataSnapshot) (*contracts.SignalSet, error)
}

// Ranker blends signals into the composite ranking (S3)
// ⭐ SSOT: S3 랭킹 인터페이스
type Ranker interface {
	Rank(ctx context.Context, cfg *scoringconfig.Config, pop *contracts.Population, signals *contracts.SignalSet) ([]contracts.CompositeRanking, error)
}
