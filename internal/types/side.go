package types

import "strings"

// Direction is the exposure of an open position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Sign is +1 for long and -1 for short.
func (d Direction) Sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}

// EntrySide is the order side that opens this direction.
func (d Direction) EntrySide() Side {
	if d == Short {
		return Sell
	}
	return Buy
}

// ExitSide is the order side that closes this direction.
func (d Direction) ExitSide() Side {
	return d.EntrySide().Opposite()
}

func (d Direction) Lower() string { return strings.ToLower(string(d)) }

// Side is an order side.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Direction is the exposure an order on this side opens.
func (s Side) Direction() Direction {
	if s == Sell {
		return Short
	}
	return Long
}

// CrossPrice is the price an order on this side pays when it crosses half
// the relative spread around mid: buys lift the ask, sells hit the bid.
func (s Side) CrossPrice(mid, spread float64) float64 {
	if s == Buy {
		return mid * (1 + spread/2)
	}
	return mid * (1 - spread/2)
}
