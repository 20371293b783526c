package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoachesOrderAndRates(t *testing.T) {
	got := Coaches()
	require.Len(t, got, 5)
	keys := []CoachClass{CoachBusiness, CoachFirstClass, CoachEconomy, CoachSecondClass, CoachNonAC}
	rates := []float64{5.0, 3.5, 2.0, 1.5, 1.0}
	for i, c := range got {
		assert.Equal(t, keys[i], c.Key)
		assert.Equal(t, rates[i], c.RatePerKm)
	}

	got[0].RatePerKm = 99
	info, ok := LookupCoach(CoachBusiness)
	require.True(t, ok)
	assert.Equal(t, 5.0, info.RatePerKm, "catalogue must not be mutable through Coaches()")
}

func TestCoachClassValid(t *testing.T) {
	assert.True(t, CoachNonAC.Valid())
	assert.False(t, CoachClass("economy").Valid())
	assert.False(t, CoachClass("").Valid())
	assert.Equal(t, "1st Class", CoachFirstClass.DisplayName())
	assert.Equal(t, "SLEEPER", CoachClass("SLEEPER").DisplayName())
}

func TestSeatGridAndLabel(t *testing.T) {
	assert.True(t, Seat{Row: 1, Column: 1}.InGrid())
	assert.True(t, Seat{Row: 5, Column: 4}.InGrid())
	assert.False(t, Seat{Row: 6, Column: 1}.InGrid())
	assert.False(t, Seat{Row: 0, Column: 1}.InGrid())
	assert.False(t, Seat{Row: 1, Column: 5}.InGrid())

	assert.Equal(t, "A1", Seat{Row: 1, Column: 1}.Label())
	assert.Equal(t, "D5", Seat{Row: 5, Column: 4}.Label())
}

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "2800.00", Money(280000).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-1.50", Money(-150).String())
	assert.Equal(t, Money(230000), MoneyFromFloat(2300.0000000000005))

	b, err := json.Marshal(Money(123456))
	require.NoError(t, err)
	assert.Equal(t, `"1234.56"`, string(b))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan([]byte("2875.00")))
	assert.Equal(t, Money(287500), m)

	require.NoError(t, m.Scan("0.10"))
	assert.Equal(t, Money(10), m)

	require.NoError(t, m.Scan(nil))
	assert.Equal(t, Money(0), m)

	assert.Error(t, m.Scan([]byte("abc")))
	assert.Error(t, m.Scan(true))
}
