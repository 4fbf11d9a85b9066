package billing

import (
	"testing"

	"github.com/bms/backend/internal/domain/building"
	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeUnit(area, coefficient float64, residents int) building.Unit {
	u := building.Unit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuildingID:        uuid.New(),
		ResidentsCount:    residents,
	}
	if area > 0 {
		a := decimal.NewFromFloat(area)
		u.Area = &a
	}
	if coefficient > 0 {
		c := decimal.NewFromFloat(coefficient)
		u.Coefficient = &c
	}
	return u
}

func shareAmounts(shares []UnitShare) []int64 {
	amounts := make([]int64, len(shares))
	for i, s := range shares {
		amounts[i] = s.Amount.Amount()
	}
	return amounts
}

func TestEqualDistribution(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		units    int
		expected []int64
	}{
		{name: "even split", total: 900, units: 3, expected: []int64{300, 300, 300}},
		{name: "remainder goes to first unit", total: 1000, units: 3, expected: []int64{334, 333, 333}},
		{name: "single unit", total: 777, units: 1, expected: []int64{777}},
		{name: "total smaller than unit count", total: 2, units: 3, expected: []int64{2, 0, 0}},
	}

	d, err := DistributorFor(DistributionEqual)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := make([]building.Unit, tt.units)
			for i := range units {
				units[i] = makeUnit(0, 0, 0)
			}

			shares, err := d.Distribute(valueobject.NewMoney(tt.total), units)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, shareAmounts(shares))

			sum := valueobject.Zero
			for _, s := range shares {
				sum = sum.Add(s.Amount)
			}
			assert.Equal(t, tt.total, sum.Amount())
		})
	}
}

func TestWeightedDistribution(t *testing.T) {
	t.Run("by area exact proportions", func(t *testing.T) {
		units := []building.Unit{makeUnit(100, 0, 0), makeUnit(200, 0, 0), makeUnit(300, 0, 0)}
		d, err := DistributorFor(DistributionByArea)
		require.NoError(t, err)

		shares, err := d.Distribute(valueobject.NewMoney(900000), units)
		require.NoError(t, err)
		assert.Equal(t, []int64{150000, 300000, 450000}, shareAmounts(shares))
	})

	t.Run("rounding drift lands on first unit", func(t *testing.T) {
		units := []building.Unit{makeUnit(1, 0, 0), makeUnit(1, 0, 0), makeUnit(1, 0, 0)}
		d, err := DistributorFor(DistributionByArea)
		require.NoError(t, err)

		shares, err := d.Distribute(valueobject.NewMoney(100), units)
		require.NoError(t, err)

		sum := valueobject.Zero
		for _, s := range shares {
			sum = sum.Add(s.Amount)
		}
		assert.Equal(t, int64(100), sum.Amount())
		assert.Equal(t, []int64{34, 33, 33}, shareAmounts(shares))
	})

	t.Run("by coefficient", func(t *testing.T) {
		units := []building.Unit{makeUnit(0, 1.5, 0), makeUnit(0, 0.5, 0)}
		d, err := DistributorFor(DistributionByCoefficient)
		require.NoError(t, err)

		shares, err := d.Distribute(valueobject.NewMoney(1000), units)
		require.NoError(t, err)
		assert.Equal(t, []int64{750, 250}, shareAmounts(shares))
	})

	t.Run("by residents ignores units without residents", func(t *testing.T) {
		units := []building.Unit{makeUnit(0, 0, 2), makeUnit(0, 0, 0), makeUnit(0, 0, 3)}
		d, err := DistributorFor(DistributionByResidents)
		require.NoError(t, err)

		shares, err := d.Distribute(valueobject.NewMoney(500), units)
		require.NoError(t, err)
		assert.Equal(t, []int64{200, 0, 300}, shareAmounts(shares))
	})

	t.Run("zero weight sum is impossible", func(t *testing.T) {
		units := []building.Unit{makeUnit(0, 0, 0), makeUnit(0, 0, 0)}
		for _, method := range []DistributionMethod{DistributionByArea, DistributionByCoefficient, DistributionByResidents} {
			d, err := DistributorFor(method)
			require.NoError(t, err)

			_, err = d.Distribute(valueobject.NewMoney(1000), units)
			assert.ErrorIs(t, err, ErrDistributionImpossible, method.String())
		}
	})
}

func TestDistributionValidation(t *testing.T) {
	d, err := DistributorFor(DistributionEqual)
	require.NoError(t, err)

	t.Run("no units", func(t *testing.T) {
		_, err := d.Distribute(valueobject.NewMoney(1000), nil)
		assert.ErrorIs(t, err, ErrDistributionImpossible)
	})

	t.Run("non-positive total", func(t *testing.T) {
		_, err := d.Distribute(valueobject.Zero, []building.Unit{makeUnit(0, 0, 0)})
		assert.Error(t, err)

		_, err = d.Distribute(valueobject.NewMoney(-100), []building.Unit{makeUnit(0, 0, 0)})
		assert.Error(t, err)
	})

	t.Run("no distributor for custom", func(t *testing.T) {
		_, err := DistributorFor(DistributionCustom)
		assert.Error(t, err)
	})
}
