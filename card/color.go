package card

type Color byte

const (
	NoColor Color = iota // Wild / Skip
	Red
	Blue
	Green
	Yellow
)

var colorLetters = map[Color]string{
	Red:    "R",
	Blue:   "B",
	Green:  "G",
	Yellow: "Y",
}

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Blue:
		return "blue"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	}
	return "none"
}

// Colors lists the four suits of a Phase 10 deck in deck order.
var Colors = []Color{Red, Blue, Green, Yellow}
