package date

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	rq := require.New(t)

	d, err := Parse(DefaultFormat, "2024-02-29")
	rq.NoError(err)
	rq.Equal(New(2024, time.February, 29), d)
	rq.Equal("2024-02-29", d.String())
	rq.Equal(2024, d.Year())

	_, err = Parse(DefaultFormat, "2023-02-29")
	rq.Error(err)
	_, err = Parse("2006-01-02 15:04", "2023-01-01 10:30")
	rq.Error(err)

	rq.Equal(New(2023, 1, 2), MustParse("2023-01-02"))
}

func TestArithmetic(t *testing.T) {
	rq := require.New(t)

	d := New(2023, time.December, 30)
	rq.Equal(New(2024, time.January, 4), d.AddDays(5))
	rq.Equal(New(2023, time.December, 25), d.AddDays(-5))
	rq.Equal(5, d.AddDays(5).DaysSince(d))
	rq.Equal(-5, d.DaysSince(d.AddDays(5)))
	rq.Equal(366, New(2024, 12, 30).DaysSince(d))

	rq.Equal(New(2025, time.December, 30), d.AddYears(2))
	// Feb 29 normalizes forward.
	rq.Equal(New(2025, time.March, 1), New(2024, time.February, 29).AddYears(1))

	rq.True(d.AddDays(1).After(d))
	rq.True(d.Before(d.AddDays(1)))
	rq.False(d.Before(d))
	rq.True(d.Equal(New(2023, 12, 30)))
}

func TestToday(t *testing.T) {
	rq := require.New(t)

	rq.True(Date{}.IsZero())
	rq.False(Today().IsZero())

	TodaysDateForTest = New(2022, 6, 1)
	defer func() { TodaysDateForTest = Date{} }()
	rq.Equal(New(2022, 6, 1), Today())
	rq.Equal(New(2022, 6, 1), Date{}.OrToday())
	rq.Equal(New(2020, 1, 1), New(2020, 1, 1).OrToday())
}
