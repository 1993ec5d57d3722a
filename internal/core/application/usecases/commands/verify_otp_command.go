package commands

import (
	"errors"
	"strings"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

var ErrVerifyOTPCommandIsNotConstructed = errors.New(
	"VerifyOTPCommand must be created via NewVerifyOTPCommand constructor",
)

type VerifyOTPCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	code    string
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewVerifyOTPCommand(orderID kernel.UUID, code string, actor kernel.Actor) (VerifyOTPCommand, error) {
	var codeErr error
	if strings.TrimSpace(code) == "" {
		codeErr = errs.NewValueIsRequiredError("otp")
	}

	if err := errors.Join(orderID.Validate(), codeErr, actor.Validate()); err != nil {
		return VerifyOTPCommand{}, err
	}

	return VerifyOTPCommand{
		orderID: orderID,
		code:    code,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c VerifyOTPCommand) Validate() error {
	return c.guard.Validate(ErrVerifyOTPCommandIsNotConstructed)
}

func (c VerifyOTPCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c VerifyOTPCommand) Code() string {
	return c.code
}

func (c VerifyOTPCommand) Actor() kernel.Actor {
	return c.actor
}
