package sim

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// FormatLapTime renders milliseconds as m:ss.mmm.
func FormatLapTime(ms uint32) string {
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%d:%02d.%03d", minutes, seconds, millis)
}

// Tyre display letters.
const (
	TyreSoft    = "S"
	TyreMedium  = "M"
	TyreHard    = "H"
	TyreInter   = "I"
	TyreWet     = "W"
	TyreUnknown = "U"
)

// TyreLetter maps a visual tyre compound id to its display letter.
func TyreLetter(visualCompound uint8) string {
	switch visualCompound {
	case 16:
		return TyreSoft
	case 17:
		return TyreMedium
	case 18:
		return TyreHard
	case 7:
		return TyreInter
	case 8:
		return TyreWet
	}
	return TyreUnknown
}

// TyreCompoundID is the inverse of TyreLetter for the slick, inter and wet letters.
func TyreCompoundID(letter string) uint8 {
	switch letter {
	case TyreSoft:
		return 16
	case TyreMedium:
		return 17
	case TyreHard:
		return 18
	case TyreInter:
		return 7
	case TyreWet:
		return 8
	}
	return 0
}

var teamColors = map[uint8]string{
	0: "#27F4D2", // Mercedes
	1: "#E8002D", // Ferrari
	2: "#3671C6", // Red Bull
	3: "#64C4FF", // Williams
	4: "#229971", // Aston Martin
	5: "#FF87BC", // Alpine
	6: "#6692FF", // RB
	7: "#B6BABD", // Haas
	8: "#FF8000", // McLaren
	9: "#52E252", // Sauber
}

// TeamColor returns the livery colour for a team id.
func TeamColor(teamID uint8) string {
	if c, ok := teamColors[teamID]; ok {
		return c
	}
	return DefaultTeamColor
}

// DriverShortName derives the three-letter timing-tower code from a name:
// the first three letters of the last word, upper-cased.
func DriverShortName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	last := strings.ToUpper(fields[len(fields)-1])
	if utf8.RuneCountInString(last) <= 3 {
		return last
	}
	return string([]rune(last)[:3])
}
