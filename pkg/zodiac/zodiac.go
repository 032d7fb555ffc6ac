// Package zodiac classifies calendar dates into Western zodiac signs.
package zodiac

import "time"

// Sign is a zodiac sign name. The zero value None means no sign.
type Sign string

const (
	None        Sign = ""
	Capricorn   Sign = "Capricorn"
	Aquarius    Sign = "Aquarius"
	Pisces      Sign = "Pisces"
	Aries       Sign = "Aries"
	Taurus      Sign = "Taurus"
	Gemini      Sign = "Gemini"
	Cancer      Sign = "Cancer"
	Leo         Sign = "Leo"
	Virgo       Sign = "Virgo"
	Libra       Sign = "Libra"
	Scorpio     Sign = "Scorpio"
	Sagittarius Sign = "Sagittarius"
)

// span covers the tail of one month and the head of the next.
type span struct {
	sign       Sign
	startMonth time.Month
	startDay   int
	endMonth   time.Month
	endDay     int
}

var spans = [...]span{
	{Capricorn, time.December, 22, time.January, 19},
	{Aquarius, time.January, 20, time.February, 17},
	{Pisces, time.February, 18, time.March, 19},
	{Aries, time.March, 20, time.April, 19},
	{Taurus, time.April, 20, time.May, 20},
	{Gemini, time.May, 21, time.June, 20},
	{Cancer, time.June, 21, time.July, 22},
	{Leo, time.July, 23, time.August, 22},
	{Virgo, time.August, 23, time.September, 22},
	{Libra, time.September, 23, time.October, 22},
	{Scorpio, time.October, 23, time.November, 21},
	{Sagittarius, time.November, 22, time.December, 21},
}

// February allows 29 since the year is not considered.
var monthLength = [...]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Signs returns the twelve signs in calendar order starting with Capricorn.
func Signs() []Sign {
	out := make([]Sign, len(spans))
	for i, s := range spans {
		out[i] = s.sign
	}
	return out
}

// Classify returns the sign for the date's month and day, read in the date's
// own location. A nil date yields None.
func Classify(date *time.Time) Sign {
	if date == nil {
		return None
	}
	_, month, day := date.Date()
	return ForMonthDay(month, day)
}

// ForMonthDay returns the sign covering the given month and day. Pairs that
// are not a calendar day yield None.
func ForMonthDay(month time.Month, day int) Sign {
	if month < time.January || month > time.December {
		return None
	}
	if day < 1 || day > monthLength[month] {
		return None
	}
	for _, s := range spans {
		if month == s.startMonth && day >= s.startDay {
			return s.sign
		}
		if month == s.endMonth && day <= s.endDay {
			return s.sign
		}
	}
	return None
}
