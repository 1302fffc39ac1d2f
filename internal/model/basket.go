package model

type BasketConfig struct {
	MinDividendYield   *float64 `validate:"omitempty,gte=0"`
	MaxDividendYield   *float64 `validate:"omitempty,gte=0"`
	MinPERatio         *float64
	MaxPERatio         *float64
	MinPrice           *float64 `validate:"omitempty,gte=0"`
	MaxPrice           *float64 `validate:"omitempty,gt=0"`
	MinBeta            *float64
	MaxBeta            *float64
	MinMarketCap       *float64 `validate:"omitempty,gte=0"`
	Sectors            []string `validate:"dive,required"`
	NumStocks          int      `validate:"gt=0"`
	MaxStocksPerSector int      `validate:"gte=0"`
	MinEPSGrowth       *float64
	MinROE             *float64
}

type ScoredTicker struct {
	Fundamentals
	Score float64
}

// Basket is one candidate portfolio. It has no persistent identity.
type Basket struct {
	Tickers  []string
	Holdings []ScoredTicker
	Score    float64
	Beta     float64
}

type GenerationResult struct {
	Baskets   []Basket
	Attempts  int
	Deficient int
	Universe  int
}

// Export is a rendered report, Link is set once it is uploaded.
type Export struct {
	Filename string
	File     []byte
	Link     string
}
