package models

import (
	"time"

	"github.com/guregu/null/v6"
)

type TimeSeriesResult struct {
	Metadata   *TimeSeriesMetadata
	TimeSeries []*TimeSeriesData
}

type TimeSeriesMetadata struct {
	Symbol        string
	LastRefreshed time.Time
	TimeZone      string
}

// TimeSeriesData is one bar of an adjusted series. Values that alpha vantage sent
// but could not be parsed are left invalid rather than zeroed.
type TimeSeriesData struct {
	Timestamp     time.Time
	Close         null.Float
	AdjustedClose null.Float
}
