package card

import (
	"fmt"
	"strings"
)

// Mode tells New which input shape it is looking at.
type Mode int

const (
	ModeFull Mode = iota
	ModeCompact
	ModeTrack
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeCompact:
		return "compact"
	case ModeTrack:
		return "track"
	default:
		return "unknown"
	}
}

// ParseMode reads a mode name as printed by String. An empty name is ModeFull.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return ModeFull, nil
	case "compact":
		return ModeCompact, nil
	case "track":
		return ModeTrack, nil
	}
	return ModeFull, fmt.Errorf("unknown card input mode %q", s)
}

// Input is one of the three ways to describe a card. Build it with
// FullFields, CompactFields or TrackData; only the fields of its Mode are read.
type Input struct {
	Mode Mode

	FirstName  string
	LastName   string
	HolderName string
	Email      string
	Number     string
	Month      string
	Year       string
	CVC        string
	Track      string
}

// FullFields describes a card keyed by first and last name.
func FullFields(firstName, lastName, email, number, month, year, cvc string) Input {
	return Input{
		Mode:      ModeFull,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Number:    number,
		Month:     month,
		Year:      year,
		CVC:       cvc,
	}
}

// CompactFields describes a card keyed by a single holder name.
func CompactFields(holderName, email, number, month, year, cvc string) Input {
	return Input{
		Mode:       ModeCompact,
		HolderName: holderName,
		Email:      email,
		Number:     number,
		Month:      month,
		Year:       year,
		CVC:        cvc,
	}
}

// TrackData describes a card-present read.
func TrackData(raw string) Input {
	return Input{Mode: ModeTrack, Track: raw}
}

// FromArgs maps positional values onto a named input shape: one value is track
// data, six values whose second holds an "@" are compact fields, anything else
// is full fields with missing trailing values left empty.
func FromArgs(args ...string) Input {
	switch {
	case len(args) == 1:
		return TrackData(args[0])
	case len(args) == 6 && strings.Contains(args[1], "@"):
		return CompactFields(args[0], args[1], args[2], args[3], args[4], args[5])
	}
	var v [7]string
	copy(v[:], args)
	return FullFields(v[0], v[1], v[2], v[3], v[4], v[5], v[6])
}
