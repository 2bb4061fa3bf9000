package alpha_vantage

import (
	"fmt"
	"strings"

	sm "github.com/labib-r/portfolio-risk/service/models"
)

type TimeSeries uint8

// TimeSeries specifies a frequency to query for adjusted stock data.
const (
	TimeSeriesDailyAdjusted TimeSeries = iota
	TimeSeriesWeeklyAdjusted
	TimeSeriesMonthlyAdjusted
)

func (t TimeSeries) Name() string {
	switch t {
	case TimeSeriesDailyAdjusted:
		return "daily"
	case TimeSeriesWeeklyAdjusted:
		return "weekly"
	case TimeSeriesMonthlyAdjusted:
		return "monthly"
	default:
		return ""
	}
}

func (t TimeSeries) Function() string {
	switch t {
	case TimeSeriesDailyAdjusted:
		return "TIME_SERIES_DAILY_ADJUSTED"
	case TimeSeriesWeeklyAdjusted:
		return "TIME_SERIES_WEEKLY_ADJUSTED"
	case TimeSeriesMonthlyAdjusted:
		return "TIME_SERIES_MONTHLY_ADJUSTED"
	default:
		return ""
	}
}

func (t TimeSeries) TimeSeriesKey() string {
	switch t {
	case TimeSeriesDailyAdjusted:
		return "Time Series (Daily)"
	case TimeSeriesWeeklyAdjusted:
		return "Weekly Adjusted Time Series"
	case TimeSeriesMonthlyAdjusted:
		return "Monthly Adjusted Time Series"
	default:
		return ""
	}
}

// AnnualizationFactor is the number of bars of this series in a year
func (t TimeSeries) AnnualizationFactor() int {
	switch t {
	case TimeSeriesWeeklyAdjusted:
		return sm.Weekly
	case TimeSeriesMonthlyAdjusted:
		return sm.Monthly
	default:
		return sm.Daily
	}
}

// ParseTimeSeries maps daily/weekly/monthly onto the matching adjusted series
func ParseTimeSeries(name string) (TimeSeries, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "daily":
		return TimeSeriesDailyAdjusted, nil
	case "weekly":
		return TimeSeriesWeeklyAdjusted, nil
	case "monthly":
		return TimeSeriesMonthlyAdjusted, nil
	default:
		return 0, fmt.Errorf("%q is not a supported series, expected daily, weekly or monthly", name)
	}
}
