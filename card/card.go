package card

import (
	"fmt"
	"strconv"
	"strings"
)

// Card is a Phase 10 card.
//
// Encoding:
// - high 4 bits: color (0 none, 1 red, 2 blue, 3 green, 4 yellow)
// - low 4 bits: face (1..12 numbers, 13 skip, 14 wild)
type Card byte

func New(c Color, number byte) (Card, error) {
	if c == NoColor || c > Yellow {
		return CardInvalid, fmt.Errorf("invalid color %d", c)
	}
	if number < MinNumber || number > MaxNumber {
		return CardInvalid, fmt.Errorf("invalid number %d", number)
	}
	return Card(byte(c)<<4 | number), nil
}

func (c Card) Color() Color { return Color(c >> 4) }

func (c Card) Face() byte { return byte(c & 0x0F) }

func (c Card) IsWild() bool { return c == CardWild }

func (c Card) IsSkip() bool { return c == CardSkip }

func (c Card) IsNumber() bool {
	f := c.Face()
	return c.Color() != NoColor && f >= MinNumber && f <= MaxNumber
}

func (c Card) Valid() bool {
	return c.IsWild() || c.IsSkip() || c.IsNumber()
}

// Points is the penalty a card scores when still in hand at the end of a round.
func (c Card) Points() int {
	switch {
	case c.IsWild():
		return wildPoints
	case c.IsSkip():
		return skipPoints
	case !c.IsNumber():
		return 0
	case c.Face() <= 9:
		return lowNumberPoints
	default:
		return highNumberPoints
	}
}

func (c Card) String() string {
	switch {
	case c.IsWild():
		return "W"
	case c.IsSkip():
		return "S"
	case c.IsNumber():
		return colorLetters[c.Color()] + strconv.Itoa(int(c.Face()))
	}
	return "Invalid"
}

// Parse converts a short card code ("R7", "b12", "W", "skip") to a Card.
func Parse(s string) (Card, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	switch code {
	case "W", "WILD":
		return CardWild, nil
	case "S", "SKIP":
		return CardSkip, nil
	}
	if len(code) < 2 {
		return CardInvalid, fmt.Errorf("invalid card string: %q", s)
	}

	var color Color
	switch code[0] {
	case 'R':
		color = Red
	case 'B':
		color = Blue
	case 'G':
		color = Green
	case 'Y':
		color = Yellow
	default:
		return CardInvalid, fmt.Errorf("invalid color: %c", code[0])
	}

	n, err := strconv.Atoi(code[1:])
	if err != nil || n < int(MinNumber) || n > int(MaxNumber) {
		return CardInvalid, fmt.Errorf("invalid number: %s", code[1:])
	}
	return New(color, byte(n))
}
