// Package fulfillment provides the domain model for marketplace order status reconciliation.
//
// The marketplace reports the life of an order through several independent signals:
//   - the order status (payment lifecycle)
//   - the shipment status and its sub-status (logistics lifecycle)
//   - free-form order tags
//
// These are merged into one CanonicalStatus per order. A seller may also pin an order
// to the READY_TO_PREPARE checkpoint by hand; the Resolver keeps that manual status
// until the marketplace reports a real advance or a terminal outcome.
//
// Key types:
//   - CanonicalStatus: the closed set of statuses persisted for an order
//   - OrderStatusSignal: one upstream snapshot plus the locally persisted state
//   - Resolution: the outcome of resolving a signal
//   - MarketplaceOrder: the persisted order aggregate
//
// Everything in this package except the repository port is pure and safe to call
// concurrently. Serializing updates per order is the caller's job.
package fulfillment
