package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	domain "github.com/andrescamacho/imperium/internal/domain/catalog"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// File is the on-disk catalog layout: one list per track
type File struct {
	Technology []ItemDef `yaml:"technology"`
	Structures []ItemDef `yaml:"structures"`
	Units      []ItemDef `yaml:"units"`
	Defenses   []ItemDef `yaml:"defenses"`
}

// ItemDef is one catalog item as written in YAML
type ItemDef struct {
	Key           string         `yaml:"key"`
	Name          string         `yaml:"name"`
	MaxLevel      int            `yaml:"max_level"`
	Cost          int64          `yaml:"cost"`
	Work          int64          `yaml:"work"`
	CostGrowthPct int64          `yaml:"cost_growth_pct"`
	WorkGrowthPct int64          `yaml:"work_growth_pct"`
	Levels        []LevelDef     `yaml:"levels"`
	Provides      string         `yaml:"provides"`
	SpeedBonusPct map[string]int `yaml:"speed_bonus_pct"`
	Requires      RequiresDef    `yaml:"requires"`
}

// LevelDef pins cost and work of one level
type LevelDef struct {
	Level int   `yaml:"level"`
	Cost  int64 `yaml:"cost"`
	Work  int64 `yaml:"work"`
}

// RequiresDef lists prerequisites by key and minimum level
type RequiresDef struct {
	Technology map[string]int `yaml:"technology"`
	Structures map[string]int `yaml:"structures"`
}

// LoadFile reads a catalog YAML file into a static catalog
func LoadFile(path string) (*domain.StaticCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses catalog YAML. Unknown fields are rejected so typos surface at startup.
func Load(r io.Reader) (*domain.StaticCatalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	items, err := file.Items()
	if err != nil {
		return nil, err
	}
	return domain.NewStaticCatalog(items)
}

// Items converts every definition to domain items
func (f File) Items() ([]*domain.Item, error) {
	groups := []struct {
		track shared.Track
		defs  []ItemDef
	}{
		{shared.TrackTechnology, f.Technology},
		{shared.TrackStructures, f.Structures},
		{shared.TrackUnits, f.Units},
		{shared.TrackDefenses, f.Defenses},
	}

	var items []*domain.Item
	for _, g := range groups {
		for _, def := range g.defs {
			item, err := def.toItem(g.track)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
	return items, nil
}

func (d ItemDef) toItem(track shared.Track) (*domain.Item, error) {
	item := &domain.Item{
		Key:           d.Key,
		Track:         track,
		Name:          d.Name,
		MaxLevel:      d.MaxLevel,
		BaseCost:      d.Cost,
		BaseWork:      d.Work,
		CostGrowthPct: d.CostGrowthPct,
		WorkGrowthPct: d.WorkGrowthPct,
		Prerequisites: domain.Prerequisites{
			Technologies: d.Requires.Technology,
			Structures:   d.Requires.Structures,
		},
	}
	if item.Name == "" {
		item.Name = d.Key
	}
	// Units and defenses are produced one at a time
	if track == shared.TrackUnits || track == shared.TrackDefenses {
		item.MaxLevel = 1
	}

	for _, l := range d.Levels {
		item.Levels = append(item.Levels, domain.LevelOverride{Level: l.Level, Cost: l.Cost, Work: l.Work})
	}

	if d.Provides != "" {
		provides, err := shared.ParseTrack(d.Provides)
		if err != nil {
			return nil, fmt.Errorf("catalog item %s: %w", d.Key, err)
		}
		item.ProvidesTrack = provides
	}

	if len(d.SpeedBonusPct) > 0 {
		item.SpeedBonusPct = make(map[shared.Track]int, len(d.SpeedBonusPct))
		for raw, pct := range d.SpeedBonusPct {
			t, err := shared.ParseTrack(raw)
			if err != nil {
				return nil, fmt.Errorf("catalog item %s: %w", d.Key, err)
			}
			item.SpeedBonusPct[t] = pct
		}
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}
