package model

// CareerRank is one tier of the lifetime-profit ladder.
type CareerRank struct {
	ID        string
	Name      string
	MinProfit float64
	Color     string
}
