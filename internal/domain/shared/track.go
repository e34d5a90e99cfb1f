package shared

import "fmt"

// Track identifies one of the four progression tracks an empire advances on.
type Track string

const (
	TrackTechnology Track = "technology"
	TrackStructures Track = "structures"
	TrackUnits      Track = "units"
	TrackDefenses   Track = "defenses"
)

// AllTracks lists every track in display order
func AllTracks() []Track {
	return []Track{TrackTechnology, TrackStructures, TrackUnits, TrackDefenses}
}

// IsValid checks if the track is one of the known tracks
func (t Track) IsValid() bool {
	switch t {
	case TrackTechnology, TrackStructures, TrackUnits, TrackDefenses:
		return true
	}
	return false
}

func (t Track) String() string {
	return string(t)
}

// ParseTrack converts a string into a Track
func ParseTrack(s string) (Track, error) {
	t := Track(s)
	if !t.IsValid() {
		return "", NewValidationError("track", fmt.Sprintf("unknown track %q", s))
	}
	return t, nil
}
