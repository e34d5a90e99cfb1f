package catalog

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

const sampleCatalog = `
technology:
  - key: energy_technology
    cost: 300
    work: 300
    cost_growth_pct: 200
    speed_bonus_pct:
      technology: 10
structures:
  - key: research_lab
    cost: 200
    work: 200
    provides: technology
    levels:
      - level: 2
        cost: 999
        work: 500
units:
  - key: light_fighter
    cost: 100
    work: 100
    requires:
      structures:
        shipyard: 1
defenses:
  - key: laser_turret
    cost: 150
    work: 150
`

func TestLoad_ParsesEveryTrack(t *testing.T) {
	cat, err := Load(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	tech, ok := cat.Item("energy_technology")
	require.True(t, ok)
	assert.Equal(t, shared.TrackTechnology, tech.Track)
	assert.Equal(t, "energy_technology", tech.Name)
	assert.Equal(t, 10, tech.SpeedBonusPct[shared.TrackTechnology])

	cost, err := cat.Cost("energy_technology", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(600), cost)

	lab, ok := cat.Item("research_lab")
	require.True(t, ok)
	assert.Equal(t, shared.TrackTechnology, lab.ProvidesTrack)
	labCost, err := cat.Cost("research_lab", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(999), labCost)

	fighter, ok := cat.Item("light_fighter")
	require.True(t, ok)
	assert.Equal(t, 1, fighter.MaxLevel)
	assert.Equal(t, 1, fighter.Prerequisites.Structures["shipyard"])

	assert.Len(t, cat.Items(shared.TrackDefenses), 1)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("technology:\n  - key: x\n    costt: 5\n"))
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownProvidedTrack(t *testing.T) {
	_, err := Load(strings.NewReader("structures:\n  - key: lab\n    cost: 1\n    work: 1\n    provides: magic\n"))
	assert.Error(t, err)
}

func TestLoad_RejectsDuplicateKeys(t *testing.T) {
	_, err := Load(strings.NewReader("units:\n  - key: a\n    cost: 1\n    work: 1\ndefenses:\n  - key: a\n    cost: 1\n    work: 1\n"))
	assert.Error(t, err)
}

func TestLoadFile_ShippedCatalog(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "configs", "catalog.yaml")

	cat, err := LoadFile(path)
	require.NoError(t, err)

	for _, track := range shared.AllTracks() {
		assert.NotEmpty(t, cat.Items(track), "track %s", track)
	}
}
