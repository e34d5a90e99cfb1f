package helpers

import (
	"github.com/andrescamacho/imperium/internal/domain/catalog"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Catalog keys used across tests
const (
	EnergyTech       = "energy_technology"
	ComputerTech     = "computer_technology"
	ResearchLab      = "research_lab"
	ConstructionYard = "construction_yard"
	Shipyard         = "shipyard"
	DefenseGrid      = "defense_grid"
	LightFighter     = "light_fighter"
	CargoHauler      = "cargo_hauler"
	LaserTurret      = "laser_turret"
)

// Test rates: one asset level processes 100 work per hour, 25 with no capacity
const (
	TestRatePerLevel int64 = 100
	TestFloorPerHour int64 = 25
)

// TestCatalogItems returns a small catalog covering every track.
//
//	energy_technology   300 credits, 600 work (6h with one lab level)
//	computer_technology 400 credits, needs energy_technology 1, +10% tech speed per level
//	research_lab        200 credits, technology capacity
//	construction_yard   150 credits, structures capacity
//	shipyard            400 credits, units capacity
//	defense_grid        250 credits, defenses capacity
//	light_fighter       100 credits, 200 work, needs shipyard 1
//	cargo_hauler        150 credits, 300 work, needs shipyard 1
//	laser_turret        150 credits, 300 work
func TestCatalogItems() []*catalog.Item {
	return []*catalog.Item{
		{
			Key: EnergyTech, Track: shared.TrackTechnology, Name: "Energy Technology",
			MaxLevel: 10, BaseCost: 300, BaseWork: 600, CostGrowthPct: 200, WorkGrowthPct: 200,
		},
		{
			Key: ComputerTech, Track: shared.TrackTechnology, Name: "Computer Technology",
			MaxLevel: 10, BaseCost: 400, BaseWork: 800, CostGrowthPct: 200, WorkGrowthPct: 200,
			SpeedBonusPct: map[shared.Track]int{shared.TrackTechnology: 10},
			Prerequisites: catalog.Prerequisites{Technologies: map[string]int{EnergyTech: 1}},
		},
		{
			Key: ResearchLab, Track: shared.TrackStructures, Name: "Research Lab",
			MaxLevel: 10, BaseCost: 200, BaseWork: 400, CostGrowthPct: 150, WorkGrowthPct: 150,
			ProvidesTrack: shared.TrackTechnology,
		},
		{
			Key: ConstructionYard, Track: shared.TrackStructures, Name: "Construction Yard",
			MaxLevel: 10, BaseCost: 150, BaseWork: 300, CostGrowthPct: 150, WorkGrowthPct: 150,
			ProvidesTrack: shared.TrackStructures,
		},
		{
			Key: Shipyard, Track: shared.TrackStructures, Name: "Shipyard",
			MaxLevel: 10, BaseCost: 400, BaseWork: 600, CostGrowthPct: 150, WorkGrowthPct: 150,
			ProvidesTrack: shared.TrackUnits,
		},
		{
			Key: DefenseGrid, Track: shared.TrackStructures, Name: "Defense Grid",
			MaxLevel: 10, BaseCost: 250, BaseWork: 500, CostGrowthPct: 150, WorkGrowthPct: 150,
			ProvidesTrack: shared.TrackDefenses,
		},
		{
			Key: LightFighter, Track: shared.TrackUnits, Name: "Light Fighter",
			MaxLevel: 1, BaseCost: 100, BaseWork: 200,
			Prerequisites: catalog.Prerequisites{Structures: map[string]int{Shipyard: 1}},
		},
		{
			Key: CargoHauler, Track: shared.TrackUnits, Name: "Cargo Hauler",
			MaxLevel: 1, BaseCost: 150, BaseWork: 300,
			Prerequisites: catalog.Prerequisites{Structures: map[string]int{Shipyard: 1}},
		},
		{
			Key: LaserTurret, Track: shared.TrackDefenses, Name: "Laser Turret",
			MaxLevel: 1, BaseCost: 150, BaseWork: 300,
		},
	}
}

// NewTestCatalog builds the static catalog of TestCatalogItems
func NewTestCatalog() *catalog.StaticCatalog {
	c, err := catalog.NewStaticCatalog(TestCatalogItems())
	if err != nil {
		panic(err)
	}
	return c
}
