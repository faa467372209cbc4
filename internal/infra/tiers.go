package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/policy"
	"gopkg.in/yaml.v3"
)

// tierFile is the on-disk layout of a tier table:
//
//	tiers:
//	  - name: base
//	    min_clients: 0
type tierFile struct {
	Tiers []domain.Tier `yaml:"tiers" toml:"tiers"`
}

// LoadTierTable reads a tier table from a .yaml/.yml or .toml file.
func LoadTierTable(path string) (policy.TierTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return policy.TierTable{}, fmt.Errorf("read tier table: %w", err)
	}

	var f tierFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return policy.TierTable{}, fmt.Errorf("decode yaml tier table: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return policy.TierTable{}, fmt.Errorf("decode toml tier table: %w", err)
		}
	default:
		return policy.TierTable{}, fmt.Errorf("unsupported tier table format %q", ext)
	}

	table, err := policy.NewTierTable(f.Tiers)
	if err != nil {
		return policy.TierTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
