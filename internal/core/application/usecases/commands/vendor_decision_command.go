package commands

import (
	"errors"
	"fmt"
	"strings"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

var ErrVendorDecisionCommandIsNotConstructed = errors.New(
	"VendorDecisionCommand must be created via NewVendorDecisionCommand constructor",
)

// Decision is the vendor's answer to a new order.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
	DecisionCancel Decision = "cancel"
)

func ParseDecision(s string) (Decision, error) {
	d := Decision(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DecisionAccept, DecisionReject, DecisionCancel:
		return d, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("decision", fmt.Errorf("%q is not accept, reject or cancel", s))
	}
}

// Target maps the decision onto the status it requests.
func (d Decision) Target() order.Status {
	switch d {
	case DecisionAccept:
		return order.Accepted
	case DecisionReject:
		return order.Rejected
	case DecisionCancel:
		return order.Canceled
	default:
		return order.Unknown
	}
}

// VendorDecisionCommand accepts, rejects or cancels an order on behalf of its vendor.
// Override only matters for canceling an order that is already on its way.
type VendorDecisionCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	decision Decision
	override bool
	actor    kernel.Actor

	guard guard.ConstructorGuard
}

func NewVendorDecisionCommand(orderID kernel.UUID, decision Decision, override bool, actor kernel.Actor) (VendorDecisionCommand, error) {
	_, decisionErr := ParseDecision(string(decision))
	if err := errors.Join(orderID.Validate(), decisionErr, actor.Validate()); err != nil {
		return VendorDecisionCommand{}, err
	}

	return VendorDecisionCommand{
		orderID:  orderID,
		decision: decision,
		override: override,
		actor:    actor,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c VendorDecisionCommand) Validate() error {
	return c.guard.Validate(ErrVendorDecisionCommandIsNotConstructed)
}

func (c VendorDecisionCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c VendorDecisionCommand) Decision() Decision {
	return c.decision
}

func (c VendorDecisionCommand) Override() bool {
	return c.override
}

func (c VendorDecisionCommand) Actor() kernel.Actor {
	return c.actor
}
