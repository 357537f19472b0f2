package contracts

import "time"

// Level is a competition level code
type Level string

const (
	LevelMLB     Level = "MLB"
	LevelAAA     Level = "AAA"
	LevelAA      Level = "AA"
	LevelHighA   Level = "A+"
	LevelA       Level = "A"
	LevelComplex Level = "CPX"
	LevelNCAA    Level = "NCAA"
)

// levelOrder fixes a total order over levels (highest competition first).
// Used wherever iteration order must be reproducible.
var levelOrder = map[Level]int{
	LevelMLB:     0,
	LevelAAA:     1,
	LevelAA:      2,
	LevelHighA:   3,
	LevelA:       4,
	LevelComplex: 5,
	LevelNCAA:    6,
}

// Valid reports whether l is a known level code
func (l Level) Valid() bool {
	_, ok := levelOrder[l]
	return ok
}

// Rank returns the position of l in the fixed level order (unknown levels last)
func (l Level) Rank() int {
	if r, ok := levelOrder[l]; ok {
		return r
	}
	return len(levelOrder)
}

// Position is a fixed roster position code
type Position string

const (
	PositionC  Position = "C"
	Position1B Position = "1B"
	Position2B Position = "2B"
	Position3B Position = "3B"
	PositionSS Position = "SS"
	PositionLF Position = "LF"
	PositionCF Position = "CF"
	PositionRF Position = "RF"
	PositionDH Position = "DH"
	PositionSP Position = "SP"
	PositionRP Position = "RP"
)

// PositionGroup separates hitters from pitchers
type PositionGroup string

const (
	GroupHitter  PositionGroup = "hitter"
	GroupPitcher PositionGroup = "pitcher"
)

// Group maps a position to its group
func (p Position) Group() PositionGroup {
	if p == PositionSP || p == PositionRP {
		return GroupPitcher
	}
	return GroupHitter
}

// Valid reports whether p is a known position code
func (p Position) Valid() bool {
	switch p {
	case PositionC, Position1B, Position2B, Position3B, PositionSS,
		PositionLF, PositionCF, PositionRF, PositionDH, PositionSP, PositionRP:
		return true
	}
	return false
}

// Prospect is a ranked athlete. Written by ingestion, read-only here.
// ⭐ SSOT: 선수 식별 정보
type Prospect struct {
	ID           int64     `json:"id"`
	ExternalID   string    `json:"external_id,omitempty"` // league id, unique when present
	Name         string    `json:"name"`
	Position     Position  `json:"position"`
	Organization string    `json:"organization"`
	Level        Level     `json:"level"` // current level
	Age          int       `json:"age"`
	ETAYear      int       `json:"eta_year"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Group returns the prospect's position group
func (p *Prospect) Group() PositionGroup {
	return p.Position.Group()
}
