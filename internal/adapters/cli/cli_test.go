package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	empireCommands "github.com/andrescamacho/imperium/internal/application/empire/commands"
	"github.com/andrescamacho/imperium/internal/domain/shared"
	"github.com/andrescamacho/imperium/internal/infrastructure/config"
	"github.com/andrescamacho/imperium/test/helpers"
)

func TestResolveActorWith(t *testing.T) {
	handler := config.NewUserConfigHandlerAt(filepath.Join(t.TempDir(), "config.json"))

	_, err := resolveActorWith("", handler)
	assert.Error(t, err, "no flag and no default")

	require.NoError(t, handler.SetDefaultActor("alice"))

	actor, err := resolveActorWith("", handler)
	require.NoError(t, err)
	assert.Equal(t, "alice", actor)

	actor, err = resolveActorWith("  bob ", handler)
	require.NoError(t, err)
	assert.Equal(t, "bob", actor, "the flag wins over the default")
}

func TestParseStartingAssets(t *testing.T) {
	assets, err := parseStartingAssets([]string{"A01:02:03:04=research_lab:2", "A01:02:03:04=shipyard:1"})
	require.NoError(t, err)
	assert.Equal(t, []empireCommands.StartingAsset{
		{Location: "A01:02:03:04", ItemKey: "research_lab", Level: 2},
		{Location: "A01:02:03:04", ItemKey: "shipyard", Level: 1},
	}, assets)

	for _, bad := range []string{"research_lab:2", "A01:02:03:04=research_lab", "A01:02:03:04=research_lab:0", "A01:02:03:04=lab:x"} {
		_, err := parseStartingAssets([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseTrack(t *testing.T) {
	track, err := parseTrack(" Units ")
	require.NoError(t, err)
	assert.Equal(t, shared.TrackUnits, track)

	_, err = parseTrack("ships")
	assert.ErrorContains(t, err, "technology, structures, units, defenses")
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgres://imperium:****@db:5432/imperium", maskPassword("postgres://imperium:secret@db:5432/imperium"))
	assert.Equal(t, "postgres://imperium@db/imperium", maskPassword("postgres://imperium@db/imperium"))
	assert.Equal(t, "not a url", maskPassword("not a url"))
}

func TestFormatCredits(t *testing.T) {
	assert.Equal(t, "+250", formatCredits(250))
	assert.Equal(t, "-300", formatCredits(-300))
	assert.Equal(t, "0", formatCredits(0))
}

func TestPrerequisiteTree(t *testing.T) {
	cat := helpers.NewTestCatalog()

	_, err := BuildPrerequisiteTree(cat, "warp_drive")
	assert.Error(t, err)

	root, err := BuildPrerequisiteTree(cat, helpers.ComputerTech)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	assert.Equal(t, helpers.EnergyTech, root.Children[0].Key)
	assert.Equal(t, 1, root.Children[0].RequiredLevel)
	assert.False(t, root.Children[0].PerLocation)

	assert.Equal(t,
		"Computer Technology (computer_technology) [technology]\n"+
			"└── Energy Technology (energy_technology) level 1 [technology]\n",
		NewTreeFormatter(false).FormatTree(root))

	fighter, err := BuildPrerequisiteTree(cat, helpers.LightFighter)
	require.NoError(t, err)
	require.Len(t, fighter.Children, 1)
	assert.True(t, fighter.Children[0].PerLocation)
	assert.Contains(t, NewTreeFormatter(false).FormatTree(fighter), "└── Shipyard (shipyard) level 1 [structures] at build location")
}

func TestCheckHealth(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer healthy.Close()

	status, err := checkHealth(context.Background(), healthy.Client(), healthy.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", status)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	_, err = checkHealth(context.Background(), failing.Client(), failing.URL)
	assert.ErrorContains(t, err, "503")
}
