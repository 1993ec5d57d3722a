package order

import (
	"fmt"
	"strings"

	"fooddelivery/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// Legal transitions (directed, no back-edges except to Canceled):
//
//	Pending ──> Accepted ──> Assigned ──> PickedUp ──> OnTheWay ──> Delivered
//	   │            │            │            │            │
//	   ├──> Rejected└────────────┴────────────┴────────────┴──> Canceled
//	   └───────────────────────────────────────────────────────> Canceled
//
// Rejected, Canceled and Delivered are terminal. The numeric values are persisted
// and must stay stable.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status: checkout finished, vendor has not decided yet.
	Pending

	// Accepted means the vendor will prepare the order; it can now be broadcast to partners.
	Accepted

	// Assigned means exactly one delivery partner won the claim.
	Assigned

	// PickedUp means the partner collected the order from the vendor.
	PickedUp

	// OnTheWay means the partner is travelling to the delivery address.
	OnTheWay

	// Delivered is the successful terminal status. Reachable only after OTP verification.
	Delivered

	// Rejected is the terminal status of an order the vendor declined.
	Rejected

	// Canceled is the terminal status of an order withdrawn before delivery.
	Canceled
)

var statusNames = map[Status]string{
	Unknown:   "unknown",
	Pending:   "pending",
	Accepted:  "accepted",
	Assigned:  "assigned",
	PickedUp:  "pickedUp",
	OnTheWay:  "onTheWay",
	Delivered: "delivered",
	Rejected:  "rejected",
	Canceled:  "canceled",
}

// successors is the legal transition graph.
var successors = map[Status][]Status{
	Pending:  {Accepted, Rejected, Canceled},
	Accepted: {Assigned, Canceled},
	Assigned: {PickedUp, Canceled},
	PickedUp: {OnTheWay, Canceled},
	OnTheWay: {Delivered, Canceled},
}

// ParseStatus converts the wire name (case-insensitive) into a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if status != Unknown && strings.EqualFold(name, strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that s is one of the defined statuses (Unknown is invalid).
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status; it is safe on invalid values.
func (s Status) String() string {
	if str, ok := statusNames[s]; ok {
		return str
	}
	return statusNames[Unknown]
}

// IsTerminal reports whether no further transition is permitted from s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Rejected || s == Canceled
}

// CanTransitionTo reports whether next is a direct successor of s in the graph.
func (s Status) CanTransitionTo(next Status) bool {
	for _, candidate := range successors[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Successors returns the direct successors of s in graph order.
func (s Status) Successors() []Status {
	out := make([]Status, len(successors[s]))
	copy(out, successors[s])
	return out
}

// IsAfterDispatch reports whether a partner is (or was) physically handling the order.
func (s Status) IsAfterDispatch() bool {
	return s == Assigned || s == PickedUp || s == OnTheWay || s == Delivered
}

// ValidateCanHavePartner checks the consistency between status and partner assignment.
//
// Business rules:
//   - Pending, Accepted and Rejected orders have no partner
//   - Assigned, PickedUp, OnTheWay and Delivered orders have exactly one partner
//   - Canceled orders may have one (canceled after the claim) or none
func (s Status) ValidateCanHavePartner(hasPartner bool) error {
	if s == Canceled {
		return nil
	}

	if hasPartner && !s.IsAfterDispatch() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a delivery partner", s),
		)
	}

	if !hasPartner && s.IsAfterDispatch() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no delivery partner", s),
		)
	}

	return nil
}
