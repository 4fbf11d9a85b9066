// Package billing provides the domain models for charging a building's units
// and recording the payments that settle those charges.
//
// Key Aggregates:
//   - Charge: An assessment raised against a building, distributed across its
//     units as ChargeUnitItems by a DistributionMethod
//   - Payment: A resident payment against one unit's share of a charge,
//     recorded PENDING and later verified or rejected
//
// Distribution is pure arithmetic on integer minor currency units: the total
// is split by equal share, area, coefficient or residents weighting, with the
// rounding remainder assigned deterministically so every distribution sums
// exactly to the charge total.
//
// The billing domain integrates with:
//   - Building domain: Units supply the distribution weights
//   - Treasury domain: Verified payments post income to the building fund
package billing
