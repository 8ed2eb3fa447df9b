package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d)
	assert.Equal(t, "2024-02-29", d.String())

	for _, bad := range []string{"", "2024-13-01", "2023-02-29", "01/02/2024"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestDate_AddDaysAndDaysUntil(t *testing.T) {
	d := MustParseDate("2023-12-30")

	assert.Equal(t, MustParseDate("2024-01-02"), d.AddDays(3))
	assert.Equal(t, MustParseDate("2023-12-29"), d.AddDays(-1))
	assert.Equal(t, 3, d.DaysUntil(MustParseDate("2024-01-02")))
	assert.Equal(t, -1, d.DaysUntil(MustParseDate("2023-12-29")))
	assert.Equal(t, 366, MustParseDate("2024-01-01").DaysUntil(MustParseDate("2025-01-01")))
}

func TestDate_Compare(t *testing.T) {
	a := MustParseDate("2024-01-31")
	b := MustParseDate("2024-02-01")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, a, MinDate(a, b))
	assert.Equal(t, b, MaxDate(a, b))
}

func TestDateOf_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	instant := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, MustParseDate("2024-01-01"), DateOf(instant))
	assert.Equal(t, MustParseDate("2024-01-02"), DateOf(instant.In(tokyo)))
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		D Date `json:"d"`
		Z Date `json:"z"`
	}
	data, err := json.Marshal(wrapper{D: MustParseDate("2024-01-04")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-01-04","z":""}`, string(data))

	var got wrapper
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, MustParseDate("2024-01-04"), got.D)
	assert.True(t, got.Z.IsZero())
}

func TestToday(t *testing.T) {
	clock := fixedClock(time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC))

	assert.Equal(t, MustParseDate("2024-01-01"), Today(clock, nil))
	assert.Equal(t, MustParseDate("2024-01-02"), Today(clock, time.FixedZone("CET", 3600)))
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }
