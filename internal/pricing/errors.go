package pricing

import "errors"

// ErrPricingInvariant marks an internal reconciliation failure, such as a
// milestone sum that drifted from the subtotal. Reaching it is a defect in
// this package, never a user input problem.
var ErrPricingInvariant = errors.New("pricing: invariant violation")
