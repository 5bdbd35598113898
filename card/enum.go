package card

const (
	CardInvalid Card = 0

	// Face values above the number range. Skip and Wild carry no color.
	FaceSkip byte = 13
	FaceWild byte = 14

	CardSkip Card = Card(FaceSkip)
	CardWild Card = Card(FaceWild)
)

const (
	MinNumber byte = 1
	MaxNumber byte = 12
)

// Deck composition
const (
	numberCopies = 2
	wildCount    = 8
	skipCount    = 4

	DeckSize = len("RBGY")*int(MaxNumber)*numberCopies + wildCount + skipCount
)

// Penalty points for cards left in hand when a round ends.
const (
	lowNumberPoints  = 5
	highNumberPoints = 10
	skipPoints       = 15
	wildPoints       = 25
)
