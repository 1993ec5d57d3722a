// Package partner provides the delivery partner aggregate: the directory record the
// dispatch engine reads when it builds a broadcast and updates when a claim succeeds.
//
// The package includes:
//   - Partner: identity, last known location, availability and the order being delivered
//
// Key business rules:
//   - a partner must have a valid identifier, a non-empty name and a valid location
//   - a partner delivers at most one order at a time (StartDelivery / FinishDelivery)
//   - only available, idle partners are eligible for a broadcast
package partner
