package services

import "time"

const (
	domesticRoundGap  = 21 * 24 * time.Hour
	groupMatchdayGap  = 14 * 24 * time.Hour
	knockoutRoundGap  = 21 * 24 * time.Hour
	seasonStartHour   = 19
	seasonStartMinute = 45
)

// Calendar gives the planned date of every round of a season that starts in
// startYear. Domestic cups start on 1 November, continental group stages on
// 15 September, and continental knockouts on 15 February of the next year.
type Calendar struct {
	Location *time.Location
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Calendar) date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, seasonStartHour, seasonStartMinute, 0, 0, c.loc())
}

func (c Calendar) DomesticRoundDate(startYear, roundOrder int) time.Time {
	return c.date(startYear, time.November, 1).Add(time.Duration(roundOrder-1) * domesticRoundGap)
}

func (c Calendar) GroupMatchdayDate(startYear, matchday int) time.Time {
	return c.date(startYear, time.September, 15).Add(time.Duration(matchday-1) * groupMatchdayGap)
}

// KnockoutRoundDate is the first-leg date of the index-th knockout round
// after a group stage, counting from zero.
func (c Calendar) KnockoutRoundDate(startYear, index int) time.Time {
	return c.date(startYear+1, time.February, 15).Add(time.Duration(index) * knockoutRoundGap)
}
