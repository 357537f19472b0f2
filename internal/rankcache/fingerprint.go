package rankcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/wonny/scout/internal/contracts"
)

const (
	keyRoot       = "ranking"
	freshSpace    = keyRoot + ":fresh:"
	lastGoodSpace = keyRoot + ":latest:"

	// unit separator: cannot appear in config ids, snapshot ids or JSON text
	fieldSep = "\x1f"

	filterHashLen = 16
)

// Key identifies one cacheable ranking computation
type Key struct {
	ConfigID    string
	SnapshotID  string
	Fingerprint string
	FilterHash  string
}

// NewKey derives the cache key of (configuration, snapshot, filter)
func NewKey(configID, snapshotID string, filter contracts.PopulationFilter) Key {
	return Key{
		ConfigID:    configID,
		SnapshotID:  snapshotID,
		Fingerprint: Fingerprint(configID, snapshotID, filter),
		FilterHash:  FilterHash(filter),
	}
}

// Fingerprint is the sha256 hex of config id, snapshot id and canonical filter.
// Equal filters in any field order give equal fingerprints.
func Fingerprint(configID, snapshotID string, filter contracts.PopulationFilter) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{configID, snapshotID, filter.Canonical()}, fieldSep)))
	return hex.EncodeToString(sum[:])
}

// FilterHash identifies a filter independent of configuration and data
func FilterHash(filter contracts.PopulationFilter) string {
	sum := sha256.Sum256([]byte(filter.Canonical()))
	return hex.EncodeToString(sum[:])[:filterHashLen]
}

// Fresh is the store key of the TTL-bound result
func (k Key) Fresh() string {
	return freshSpace + k.ConfigID + ":" + k.Fingerprint
}

// LastGood is the store key of the most recent successful result for
// (configuration, filter), whatever the snapshot
func (k Key) LastGood() string {
	return lastGoodSpace + k.ConfigID + ":" + k.FilterHash
}

// FreshPrefix matches every fresh ranking entry
func FreshPrefix() string {
	return freshSpace
}

// ConfigPrefix matches the fresh entries of one configuration
func ConfigPrefix(configID string) string {
	return freshSpace + configID + ":"
}

// LastGoodPrefix matches the last-good entries of one configuration
func LastGoodPrefix(configID string) string {
	return lastGoodSpace + configID + ":"
}
