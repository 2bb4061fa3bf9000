package models

import (
	"fmt"
	"strings"
)

// periods per year, used to annualize per-period statistics
const (
	Daily     = 252
	Weekly    = 52
	Monthly   = 12
	Quarterly = 4
	Yearly    = 1
)

func ConvertFrequencyToString(inp int) string {
	switch inp {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		return ""
	}
}

// ParseFrequency maps a frequency name to its annualization factor
func ParseFrequency(name string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "daily", "days", "day":
		return Daily, nil
	case "weekly", "weeks", "week":
		return Weekly, nil
	case "monthly", "months", "month":
		return Monthly, nil
	case "quarterly", "quarters", "quarter":
		return Quarterly, nil
	case "yearly", "years", "year", "annual":
		return Yearly, nil
	default:
		return 0, fmt.Errorf("%q is not a recognized frequency", name)
	}
}
