package order

import (
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"
)

// CancelPolicy decides whether an order that is already on its way may still be canceled.
// It is configuration, not a per-request choice.
type CancelPolicy struct {
	// AllowLateCancel permits OnTheWay -> Canceled when the request carries an
	// override from a vendor or admin.
	AllowLateCancel bool
}

// TransitionOptions carries the out-of-band flags of a transition request.
type TransitionOptions struct {
	Override bool
	Policy   CancelPolicy
}

// ValidateTransition is the pure transition check. It never mutates anything and
// returns nil for the idempotent no-op (from == to).
//
// Evaluation order:
//  1. from == to: no-op, nil
//  2. from is terminal: ErrOrderTerminal
//  3. to == Delivered without a verified OTP: ErrOtpNotVerified
//  4. to is not a direct successor of from: ErrIllegalTransition
//  5. OnTheWay -> Canceled without policy, override and vendor/admin role: ErrIllegalTransition
func ValidateTransition(from, to Status, otpVerified bool, actor kernel.Actor, opts TransitionOptions) error {
	if err := to.Validate(); err != nil {
		return err
	}

	if from == to {
		return nil
	}

	if from.IsTerminal() {
		return errs.NewDomainError(errs.ErrOrderTerminal, "order is %s, cannot move to %s", from, to)
	}

	if to == Delivered && !otpVerified {
		return errs.NewDomainError(errs.ErrOtpNotVerified, "delivery code must be verified before %s", to)
	}

	if !from.CanTransitionTo(to) {
		return errs.NewDomainError(errs.ErrIllegalTransition, "cannot move from %s to %s", from, to)
	}

	if to == Canceled && from == OnTheWay {
		lateCancelAllowed := opts.Policy.AllowLateCancel &&
			opts.Override &&
			(actor.Is(kernel.RoleVendor) || actor.Is(kernel.RoleAdmin))
		if !lateCancelAllowed {
			return errs.NewDomainError(errs.ErrIllegalTransition, "order is %s, cancellation requires an authorized override", from)
		}
	}

	return nil
}
