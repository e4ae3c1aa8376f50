// Package billing provides domain models for marketplace advertising charges and their
// attribution to orders.
//
// The marketplace bills advertising per billing period, not per order. This package
// spreads a period's charge evenly over the orders closed inside that period so that
// order-level margins can include an advertising cost.
//
// Key Aggregates:
//   - BillingPeriodCharge: The advertising amount billed for one period and charge type
//
// Value Objects:
//   - ChargeType: Enumeration of advertising charge kinds found in a billing summary
//   - DistributionResult: Outcome of spreading a charge over orders
//   - MarketingSummary: Advertising cost roll-up with a monthly breakdown
//
// The billing domain integrates with:
//   - Fulfillment domain: Orders receive the attributed cost through AdvertisingCostTarget
package billing
