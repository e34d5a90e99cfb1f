package shared

import (
	"fmt"
	"regexp"
	"strconv"
)

var coordinatePattern = regexp.MustCompile(`^([A-Z])(\d{2}):(\d{2}):(\d{2}):(\d{2})$`)

// Coordinate is the address of a location: region (letter and number),
// sub-region, system and slot, written as "A12:34:56:78".
type Coordinate struct {
	regionLetter byte
	regionNumber int
	subRegion    int
	system       int
	slot         int
}

// ParseCoordinate validates the textual form of a coordinate.
// A malformed value is a client error and yields an InvalidLocationError.
func ParseCoordinate(raw string) (Coordinate, error) {
	m := coordinatePattern.FindStringSubmatch(raw)
	if m == nil {
		return Coordinate{}, NewInvalidLocationError(raw)
	}

	regionNumber, _ := strconv.Atoi(m[2])
	subRegion, _ := strconv.Atoi(m[3])
	system, _ := strconv.Atoi(m[4])
	slot, _ := strconv.Atoi(m[5])

	return Coordinate{
		regionLetter: m[1][0],
		regionNumber: regionNumber,
		subRegion:    subRegion,
		system:       system,
		slot:         slot,
	}, nil
}

// MustParseCoordinate parses a coordinate known to be valid (fixtures, database rows)
func MustParseCoordinate(raw string) Coordinate {
	c, err := ParseCoordinate(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// Region returns the region part, letter and number, e.g. "A12"
func (c Coordinate) Region() string {
	if c.IsZero() {
		return ""
	}
	return fmt.Sprintf("%c%02d", c.regionLetter, c.regionNumber)
}

func (c Coordinate) SubRegion() int { return c.subRegion }
func (c Coordinate) System() int    { return c.system }
func (c Coordinate) Slot() int      { return c.slot }

func (c Coordinate) String() string {
	if c.IsZero() {
		return ""
	}
	return fmt.Sprintf("%c%02d:%02d:%02d:%02d", c.regionLetter, c.regionNumber, c.subRegion, c.system, c.slot)
}

// Equals checks if two coordinates address the same location
func (c Coordinate) Equals(other Coordinate) bool {
	return c == other
}

// IsZero reports whether the coordinate is uninitialized
func (c Coordinate) IsZero() bool {
	return c.regionLetter == 0
}
