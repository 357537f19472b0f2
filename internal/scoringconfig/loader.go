package scoringconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/scout/internal/contracts"
)

// idHashLen is the number of hash hex chars carried in a configuration id
const idHashLen = 12

// Load reads a YAML file and returns the validated Config with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data, path)
	if err != nil {
		return nil, data, err
	}
	return cfg, data, nil
}

// Parse decodes YAML on top of Defaults(), validates and assigns the id.
// Every failure is an InvalidWeightConfigError.
func Parse(data []byte, source string) (*Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(cfg); err != nil {
		return nil, &contracts.InvalidWeightConfigError{Source: source, Err: err}
	}

	if err := Seal(cfg); err != nil {
		return nil, &contracts.InvalidWeightConfigError{Source: source, Err: err}
	}
	return cfg, nil
}

// Seal validates a programmatically built Config and assigns its id
func Seal(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	hash, err := Hash(cfg)
	if err != nil {
		return err
	}
	cfg.id = fmt.Sprintf("%s-%s", cfg.Meta.ID, hash[:idHashLen])
	return nil
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	// Struct → JSON (결정적 순서)
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
