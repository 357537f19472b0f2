package contracts

import (
	"encoding/json"
	"sort"
	"strings"
)

// PopulationFilter selects the eligible player population.
// Zero value selects every prospect.
type PopulationFilter struct {
	Levels        []Level       `json:"levels,omitempty"`
	Group         PositionGroup `json:"group,omitempty"`
	Organizations []string      `json:"organizations,omitempty"`
	MaxAge        int           `json:"max_age,omitempty"` // 0 = no limit
}

// AllPlayers is the filter used for explain
func AllPlayers() PopulationFilter {
	return PopulationFilter{}
}

// Normalize returns a copy with sorted, de-duplicated lists
func (f PopulationFilter) Normalize() PopulationFilter {
	out := PopulationFilter{Group: f.Group, MaxAge: f.MaxAge}

	seenL := make(map[Level]bool, len(f.Levels))
	for _, l := range f.Levels {
		if !seenL[l] {
			seenL[l] = true
			out.Levels = append(out.Levels, l)
		}
	}
	sort.Slice(out.Levels, func(i, j int) bool { return out.Levels[i].Rank() < out.Levels[j].Rank() })

	seenO := make(map[string]bool, len(f.Organizations))
	for _, o := range f.Organizations {
		o = strings.ToUpper(strings.TrimSpace(o))
		if o != "" && !seenO[o] {
			seenO[o] = true
			out.Organizations = append(out.Organizations, o)
		}
	}
	sort.Strings(out.Organizations)

	return out
}

// Canonical returns a stable textual form: equal filters give equal strings
func (f PopulationFilter) Canonical() string {
	b, _ := json.Marshal(f.Normalize()) // plain struct, cannot fail
	return string(b)
}

// Population represents the eligible players passed from S1 to S2
// ⭐ SSOT: S1 → S2 대상 선수 전달
type Population struct {
	Filter    PopulationFilter `json:"filter"`
	Prospects []*Prospect      `json:"prospects"` // sorted by id
	Excluded  map[int64]string `json:"excluded"`  // 제외 선수: 사유
}

// Contains checks if a player id is in the population
func (p *Population) Contains(id int64) bool {
	i := sort.Search(len(p.Prospects), func(i int) bool { return p.Prospects[i].ID >= id })
	return i < len(p.Prospects) && p.Prospects[i].ID == id
}

// IsExcluded checks if a player id is excluded with reason
func (p *Population) IsExcluded(id int64) (bool, string) {
	reason, exists := p.Excluded[id]
	return exists, reason
}

// Count returns the number of eligible players
func (p *Population) Count() int {
	return len(p.Prospects)
}

// IDs returns the player ids in ascending order
func (p *Population) IDs() []int64 {
	ids := make([]int64, len(p.Prospects))
	for i, pr := range p.Prospects {
		ids[i] = pr.ID
	}
	return ids
}
