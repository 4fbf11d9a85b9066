// Package building holds the read models the financial core consumes from
// the building-management collaborator. Buildings, units and members are
// created and maintained elsewhere; this core only reads them as inputs to
// charge distribution and as ownership scopes for funds and payments.
package building

import (
	"github.com/bms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Building represents a managed building. Exactly one fund exists per
// building; its creation is the responsibility of the building collaborator.
type Building struct {
	shared.BaseAggregateRoot
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
	Address  string    `json:"address"`
}

// Unit represents a single unit within a building. Area, coefficient and
// residents count feed the charge distribution weightings.
type Unit struct {
	shared.BaseAggregateRoot
	BuildingID     uuid.UUID        `json:"building_id"`
	Number         string           `json:"number"`
	Floor          int              `json:"floor"`
	Area           *decimal.Decimal `json:"area"`
	Coefficient    *decimal.Decimal `json:"coefficient"`
	ResidentsCount int              `json:"residents_count"`
}

// AreaWeight returns the unit's area as a distribution weight,
// zero when no area is recorded.
func (u *Unit) AreaWeight() decimal.Decimal {
	if u.Area == nil {
		return decimal.Zero
	}
	return *u.Area
}

// CoefficientWeight returns the unit's coefficient as a distribution weight,
// zero when no coefficient is recorded.
func (u *Unit) CoefficientWeight() decimal.Decimal {
	if u.Coefficient == nil {
		return decimal.Zero
	}
	return *u.Coefficient
}

// ResidentsWeight returns the unit's residents count as a distribution weight
func (u *Unit) ResidentsWeight() decimal.Decimal {
	return decimal.NewFromInt(int64(u.ResidentsCount))
}
