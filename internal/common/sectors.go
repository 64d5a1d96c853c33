package common

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sector is one entry of the sector/peer table.
type Sector struct {
	Name        string   `yaml:"name"`
	CompanyType string   `yaml:"company_type,omitempty"` // manufacturing|service|emerging, overrides [analysis]
	Banking     bool     `yaml:"banking,omitempty"`
	Symbols     []string `yaml:"symbols"`
}

// SectorTable maps symbols to sectors and peers.
type SectorTable struct {
	Sectors  []Sector `yaml:"sectors"`
	bySymbol map[string]int
}

// LoadSectorTable reads a YAML sector file. An empty path yields an empty table.
func LoadSectorTable(path string) (*SectorTable, error) {
	if path == "" {
		return NewSectorTable(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sectors file %s: %w", path, err)
	}
	return ParseSectorTable(data)
}

// ParseSectorTable decodes a YAML sector table.
func ParseSectorTable(data []byte) (*SectorTable, error) {
	var t SectorTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse sectors file: %w", err)
	}
	for i, s := range t.Sectors {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("sector %d has no name", i+1)
		}
	}
	return NewSectorTable(t.Sectors), nil
}

// NewSectorTable indexes sectors by symbol. A symbol listed twice keeps its
// first sector.
func NewSectorTable(sectors []Sector) *SectorTable {
	t := &SectorTable{Sectors: sectors, bySymbol: make(map[string]int)}
	for i, s := range sectors {
		for _, sym := range s.Symbols {
			key := normalizeSymbol(sym)
			if _, dup := t.bySymbol[key]; !dup {
				t.bySymbol[key] = i
			}
		}
	}
	return t
}

// Lookup returns the sector containing symbol.
func (t *SectorTable) Lookup(symbol string) (Sector, bool) {
	if t == nil {
		return Sector{}, false
	}
	i, ok := t.bySymbol[normalizeSymbol(symbol)]
	if !ok {
		return Sector{}, false
	}
	return t.Sectors[i], true
}

// Peers returns the other symbols of symbol's sector, sorted.
func (t *SectorTable) Peers(symbol string) []string {
	s, ok := t.Lookup(symbol)
	if !ok {
		return nil
	}
	self := normalizeSymbol(symbol)
	var peers []string
	for _, p := range s.Symbols {
		if n := normalizeSymbol(p); n != self {
			peers = append(peers, n)
		}
	}
	sort.Strings(peers)
	return peers
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
