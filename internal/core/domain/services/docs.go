// Package services provides domain services that coordinate the order aggregate with
// the delivery partner directory and the dispatch offers.
//
// The package includes:
//   - Broadcaster: selects eligible partners and builds a broadcast batch
//   - OTPGenerator: produces delivery codes from a cryptographic source
//   - OTPVerifier: authorizes and applies a delivery code submission
//   - CanRequestTransition and friends: the authorization predicates evaluated before
//     any state change
//
// Domain services hold no state of their own and never touch storage; command
// handlers load aggregates, call into this package and persist the result.
package services
