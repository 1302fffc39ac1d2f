package eodhdModel

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Number is a float the provider may send as a number, a numeric string,
// null or "NA".
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		n.Value, n.Valid = v, true
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	n.Value, n.Valid = v, true
	return nil
}

// Ptr returns nil for a missing value.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

type RealTime struct {
	Code          string `json:"code"`
	Timestamp     Number `json:"timestamp"`
	Close         Number `json:"close"`
	PreviousClose Number `json:"previousClose"`
}

type Fundamentals struct {
	General    General    `json:"General"`
	Highlights Highlights `json:"Highlights"`
	Technicals Technicals `json:"Technicals"`
}

type General struct {
	Code     string `json:"Code"`
	Name     string `json:"Name"`
	Exchange string `json:"Exchange"`
	Sector   string `json:"Sector"`
}

type Highlights struct {
	MarketCapitalization       Number `json:"MarketCapitalization"`
	PERatio                    Number `json:"PERatio"`
	DividendYield              Number `json:"DividendYield"`
	EarningsShare              Number `json:"EarningsShare"`
	ReturnOnEquityTTM          Number `json:"ReturnOnEquityTTM"`
	QuarterlyEarningsGrowthYOY Number `json:"QuarterlyEarningsGrowthYOY"`
}

type Technicals struct {
	Beta             Number `json:"Beta"`
	FiftyTwoWeekHigh Number `json:"52WeekHigh"`
	FiftyTwoWeekLow  Number `json:"52WeekLow"`
}
