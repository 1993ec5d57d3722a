// Package order provides the Order aggregate of the delivery engine and the
// status transition validator that governs it.
//
// The package includes:
//   - Order: the aggregate root (items, pricing, address snapshots, partner binding,
//     delivery code, append-only status history)
//   - Status: the lifecycle enum and the legal transition graph
//   - ValidateTransition: the pure transition check used by Order.AttemptTransition
//
// Key business rules:
//   - Status follows pending -> accepted -> assigned -> pickedUp -> onTheWay -> delivered,
//     with pending -> rejected and any non-terminal status -> canceled
//   - Re-requesting the current status is an idempotent no-op
//   - Rejected, canceled and delivered are terminal
//   - Delivered requires a verified, single-use delivery code
//   - Cancel after onTheWay needs a configured policy plus a vendor/admin override
//
// Every status change appends one history entry in the same call, so the
// persisted pair (status, history) is written as a unit by the repositories.
package order
