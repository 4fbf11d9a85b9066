package billing

import (
	"fmt"

	"github.com/bms/backend/internal/domain/building"
	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DistributionMethod represents the policy splitting a charge total across units
type DistributionMethod string

const (
	DistributionEqual         DistributionMethod = "EQUAL"
	DistributionByArea        DistributionMethod = "BY_AREA"
	DistributionByCoefficient DistributionMethod = "BY_COEFFICIENT"
	DistributionByResidents   DistributionMethod = "BY_RESIDENT_COUNT"
	DistributionCustom        DistributionMethod = "CUSTOM"
)

// IsValid checks if the method is a valid DistributionMethod
func (m DistributionMethod) IsValid() bool {
	switch m {
	case DistributionEqual, DistributionByArea, DistributionByCoefficient,
		DistributionByResidents, DistributionCustom:
		return true
	}
	return false
}

// String returns the string representation of DistributionMethod
func (m DistributionMethod) String() string {
	return string(m)
}

// ErrDistributionImpossible is returned when a split cannot be computed,
// e.g. the relevant weight sum over all units is zero.
var ErrDistributionImpossible = shared.NewDomainError("DISTRIBUTION_IMPOSSIBLE", "Charge cannot be distributed with the requested method")

// UnitShare is one unit's computed portion of a charge total
type UnitShare struct {
	UnitID uuid.UUID
	Amount valueobject.Money
}

// Distributor splits a charge total across units. Implementations guarantee
// that the returned shares sum to the total exactly.
type Distributor interface {
	Method() DistributionMethod
	Distribute(total valueobject.Money, units []building.Unit) ([]UnitShare, error)
}

// DistributorFor returns the distributor for the given method. CUSTOM has no
// distributor: custom shares are supplied by the caller and the total is
// derived from their sum.
func DistributorFor(method DistributionMethod) (Distributor, error) {
	switch method {
	case DistributionEqual:
		return equalDistributor{}, nil
	case DistributionByArea:
		return weightedDistributor{method: DistributionByArea, weight: (*building.Unit).AreaWeight}, nil
	case DistributionByCoefficient:
		return weightedDistributor{method: DistributionByCoefficient, weight: (*building.Unit).CoefficientWeight}, nil
	case DistributionByResidents:
		return weightedDistributor{method: DistributionByResidents, weight: (*building.Unit).ResidentsWeight}, nil
	default:
		return nil, shared.NewDomainError("INVALID_DISTRIBUTION_METHOD",
			fmt.Sprintf("No distributor exists for method %s", method))
	}
}

// equalDistributor gives every unit floor(total/n); the remainder goes to the
// first unit in input order.
type equalDistributor struct{}

func (equalDistributor) Method() DistributionMethod {
	return DistributionEqual
}

func (equalDistributor) Distribute(total valueobject.Money, units []building.Unit) ([]UnitShare, error) {
	if err := validateSplit(total, units); err != nil {
		return nil, err
	}

	n := int64(len(units))
	base := total.DivFloor(n)
	remainder := total.Sub(base.MulInt(n))

	shares := make([]UnitShare, len(units))
	for i, u := range units {
		shares[i] = UnitShare{UnitID: u.ID, Amount: base}
	}
	shares[0].Amount = shares[0].Amount.Add(remainder)
	return shares, nil
}

// weightedDistributor assigns round(weight_i/Σweights · total) to every unit,
// then corrects rounding drift by adding the difference to the first unit.
type weightedDistributor struct {
	method DistributionMethod
	weight func(*building.Unit) decimal.Decimal
}

func (d weightedDistributor) Method() DistributionMethod {
	return d.method
}

func (d weightedDistributor) Distribute(total valueobject.Money, units []building.Unit) ([]UnitShare, error) {
	if err := validateSplit(total, units); err != nil {
		return nil, err
	}

	weightSum := decimal.Zero
	for i := range units {
		weightSum = weightSum.Add(d.weight(&units[i]))
	}
	if weightSum.IsZero() {
		return nil, ErrDistributionImpossible
	}

	shares := make([]UnitShare, len(units))
	assigned := valueobject.Zero
	for i := range units {
		amount := total.WeightedShare(d.weight(&units[i]), weightSum)
		shares[i] = UnitShare{UnitID: units[i].ID, Amount: amount}
		assigned = assigned.Add(amount)
	}

	// Rounding drift lands on the first unit so the shares sum to the
	// total exactly.
	drift := total.Sub(assigned)
	if !drift.IsZero() {
		shares[0].Amount = shares[0].Amount.Add(drift)
	}
	return shares, nil
}

func validateSplit(total valueobject.Money, units []building.Unit) error {
	if !total.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Charge total must be positive")
	}
	if len(units) == 0 {
		return ErrDistributionImpossible
	}
	return nil
}
