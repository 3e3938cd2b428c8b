package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinepos/internal/catalog"
	"github.com/iliyamo/cinepos/internal/model"
)

func TestIsAdmitted(t *testing.T) {
	tests := []struct {
		age    int
		rating model.Rating
		want   bool
	}{
		{0, model.RatingAA, true},
		{-3, model.RatingAA, true},
		{14, model.RatingB15, false},
		{15, model.RatingB15, true},
		{17, model.RatingC, false},
		{18, model.RatingC, true},
		{90, model.Rating("R"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAdmitted(tt.age, tt.rating), "age %d rating %s", tt.age, tt.rating)
	}
}

func TestIsAdmittedMonotonic(t *testing.T) {
	for _, r := range model.Ratings {
		admitted := false
		for age := 0; age <= 120; age++ {
			ok := IsAdmitted(age, r)
			if admitted {
				require.True(t, ok, "rating %s age %d", r, age)
			}
			admitted = ok
		}
	}
}

func TestAgeOn(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		birth string
		want  int
	}{
		{"2010-06-15", 15},
		{"2010-06-16", 14},
		{"2010-05-31", 15},
		{"2010-07-01", 14},
		{"2025-06-15", 0},
		{"2026-01-01", -1},
	}
	for _, tt := range tests {
		b, err := time.Parse(time.DateOnly, tt.birth)
		require.NoError(t, err)
		assert.Equal(t, tt.want, AgeOn(b, now), tt.birth)
	}
}

func TestAgeFromBirthDate(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	age, err := AgeFromBirthDate("2007-06-15", now)
	require.NoError(t, err)
	require.NotNil(t, age)
	assert.Equal(t, 18, *age)

	age, err = AgeFromBirthDate("  ", now)
	assert.NoError(t, err)
	assert.Nil(t, age)

	_, err = AgeFromBirthDate("15/06/2007", now)
	assert.ErrorIs(t, err, ErrInvalidBirthDate)
}

func TestComputeCharge(t *testing.T) {
	std, _ := catalog.Room(model.RoomStandard)
	child, _ := catalog.Room(model.RoomChild)
	three, _ := catalog.Room(model.Room3D)

	assert.Equal(t, Charge{UnitCents: 4500, SubtotalCents: 9000, TotalCents: 9000}, ComputeCharge(std, 2))
	assert.Equal(t, Charge{UnitCents: 2050, SubtotalCents: 6150, TotalCents: 6200}, ComputeCharge(child, 3))
	assert.Equal(t, Charge{UnitCents: 2050, SubtotalCents: 2050, TotalCents: 2100}, ComputeCharge(child, 1))
	assert.Equal(t, Charge{UnitCents: 2050, SubtotalCents: 4100, TotalCents: 4100}, ComputeCharge(child, 2))
	assert.Equal(t, Charge{UnitCents: 8500}, ComputeCharge(three, 0))
	assert.Equal(t, Charge{UnitCents: 8500}, ComputeCharge(three, -2))

	for _, room := range catalog.Rooms() {
		for n := 1; n <= 20; n++ {
			c := ComputeCharge(room, n)
			assert.GreaterOrEqual(t, c.TotalCents, c.SubtotalCents)
			assert.Less(t, c.TotalCents-c.SubtotalCents, int64(CentsPerUnit))
			assert.Zero(t, c.TotalCents%CentsPerUnit)
		}
	}
}

func TestChargeFor(t *testing.T) {
	c, err := ChargeFor(model.Room3D, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(17000), c.TotalCents)

	_, err = ChargeFor("imax", 1)
	assert.ErrorIs(t, err, catalog.ErrUnknownRoom)
}

func TestBreakdownChange(t *testing.T) {
	tests := []struct {
		name    string
		payment int64
		total   int64
		want    []model.ChangeItem
	}{
		{"exact", 9000, 9000, []model.ChangeItem{}},
		{"one ten", 10000, 9000, []model.ChangeItem{{Denomination: 10, Count: 1}}},
		{"mixed", 14200, 6200, []model.ChangeItem{{Denomination: 50, Count: 1}, {Denomination: 20, Count: 1}, {Denomination: 10, Count: 1}}},
		{"eight", 7000, 6200, []model.ChangeItem{{Denomination: 5, Count: 1}, {Denomination: 2, Count: 1}, {Denomination: 1, Count: 1}}},
		{"large", 201700, 0, []model.ChangeItem{{Denomination: 1000, Count: 2}, {Denomination: 10, Count: 1}, {Denomination: 5, Count: 1}, {Denomination: 2, Count: 1}}},
		{"underpaid", 5000, 9000, []model.ChangeItem{}},
		{"fractions dropped", 10099, 9000, []model.ChangeItem{{Denomination: 10, Count: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BreakdownChange(tt.payment, tt.total))
		})
	}
}

func TestBreakdownChangeSumsToChange(t *testing.T) {
	for payment := int64(0); payment <= 300000; payment += 1300 {
		total := int64(6200)
		var sum int64
		prev := 1 << 30
		for _, it := range BreakdownChange(payment, total) {
			assert.Positive(t, it.Count)
			assert.Less(t, it.Denomination, prev)
			prev = it.Denomination
			sum += int64(it.Denomination*it.Count) * CentsPerUnit
		}
		assert.Equal(t, ChangeCents(payment, total), sum, "payment %d", payment)
	}
}
