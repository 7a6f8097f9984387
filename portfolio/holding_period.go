package portfolio

import (
	"github.com/tsiemens/lotbook/date"
)

// LongTermThresholdDays is the number of days a lot must be held to be long
// term.
//
// This is a fixed day count, not a calendar year. A 365 day holding that spans
// Feb 29 is long term even though it is one day short of a calendar year.
const LongTermThresholdDays = 365

func ClassifyHoldingPeriod(acquired date.Date, reference date.Date) HoldingPeriod {
	if reference.DaysSince(acquired) >= LongTermThresholdDays {
		return LONG_TERM
	}
	return SHORT_TERM
}

// LongTermDate is the first date on which a lot acquired on acquired is long
// term.
func LongTermDate(acquired date.Date) date.Date {
	return acquired.AddDays(LongTermThresholdDays)
}
