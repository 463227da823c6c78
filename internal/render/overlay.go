package render

import (
	"fmt"
	"math"

	"github.com/coreman2200/funtimes-replay/internal/field"
)

// Band classifies open space from tight coverage to wide open.
type Band string

const (
	BandVeryTight Band = "very_tight"
	BandTight     Band = "tight"
	BandModerate  Band = "moderate"
	BandOpen      Band = "open"
	BandVeryOpen  Band = "very_open"
)

var bandColors = map[Band]string{
	BandVeryTight: "#ff4444",
	BandTight:     "#ff8844",
	BandModerate:  "#ffdd44",
	BandOpen:      "#88ff44",
	BandVeryOpen:  "#44ff44",
}

// OpenSpaceView is the styled open-space ring drawn under a player.
type OpenSpaceView struct {
	Meters  float64 `json:"meters"`
	Display float64 `json:"display"` // never below 1
	Band    Band    `json:"band"`
	Color   string  `json:"color"`
	Radius  float64 `json:"radius"`
	Label   string  `json:"label"`
}

func BandFor(d float64) Band {
	switch {
	case d < 2:
		return BandVeryTight
	case d < 4:
		return BandTight
	case d < 6:
		return BandModerate
	case d < 8:
		return BandOpen
	default:
		return BandVeryOpen
	}
}

// StyleOpenSpace turns a raw distance in metres into its overlay style.
func StyleOpenSpace(meters float64) OpenSpaceView {
	d := math.Max(1, meters)
	b := BandFor(d)
	return OpenSpaceView{
		Meters:  meters,
		Display: d,
		Band:    b,
		Color:   bandColors[b],
		Radius:  math.Max(1.5, d*0.4),
		Label:   FeetInches(d),
	}
}

// FeetInches formats metres as feet and inches, e.g. 5'3".
func FeetInches(meters float64) string {
	total := meters * field.MeterToFeet
	feet := math.Floor(total)
	inches := math.Round((total - feet) * 12)
	if inches == 12 {
		return fmt.Sprintf("%d'0\"", int(feet)+1)
	}
	return fmt.Sprintf("%d'%d\"", int(feet), int(inches))
}
