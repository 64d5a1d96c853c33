package eodhd

import "time"

// EODData represents a single day's end-of-day price data.
type EODData struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Volume        int64     `json:"volume"`
}

// EODResponse is a slice of EODData.
type EODResponse []EODData

// FundamentalsResponse holds the parts of the fundamentals payload used for
// market snapshots.
type FundamentalsResponse struct {
	General     *GeneralInfo `json:"General"`
	Highlights  *Highlights  `json:"Highlights"`
	SharesStats *SharesStats `json:"SharesStats"`
}

// GeneralInfo contains general company information.
type GeneralInfo struct {
	Code          string `json:"Code"`
	Name          string `json:"Name"`
	Exchange      string `json:"Exchange"`
	CurrencyCode  string `json:"CurrencyCode"`
	ISIN          string `json:"ISIN"`
	FiscalYearEnd string `json:"FiscalYearEnd"`
	Sector        string `json:"Sector"`
	Industry      string `json:"Industry"`
	IsDelisted    bool   `json:"IsDelisted"`
}

// Highlights contains key financial highlights.
type Highlights struct {
	MarketCapitalization float64 `json:"MarketCapitalization"`
	BookValue            float64 `json:"BookValue"`
	PERatio              float64 `json:"PERatio"`
	EarningsShare        float64 `json:"EarningsShare"`
	MostRecentQuarter    string  `json:"MostRecentQuarter"`
}

// SharesStats contains share count statistics.
type SharesStats struct {
	SharesOutstanding float64 `json:"SharesOutstanding"`
	SharesFloat       float64 `json:"SharesFloat"`
}
