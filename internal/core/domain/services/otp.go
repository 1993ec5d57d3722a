package services

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"
)

const (
	DefaultOTPLength = 4
	minOTPLength     = 4
	maxOTPLength     = 9
)

// OTPGenerator produces N-digit numeric delivery codes from a cryptographically
// secure source. Codes carry no information about the order.
type OTPGenerator struct {
	length int
	source io.Reader
}

// NewOTPGenerator returns a generator for codes of the given length (4 to 9 digits).
func NewOTPGenerator(length int) (OTPGenerator, error) {
	if length < minOTPLength || length > maxOTPLength {
		return OTPGenerator{}, errs.NewValueIsOutOfRangeError("otpLength", length, minOTPLength, maxOTPLength)
	}

	return OTPGenerator{length: length, source: rand.Reader}, nil
}

func (g OTPGenerator) Length() int {
	return g.length
}

// Generate returns a zero-padded code, uniformly distributed over 10^length values.
func (g OTPGenerator) Generate() (string, error) {
	if g.source == nil {
		return "", errs.NewValueIsRequiredError("otp source")
	}

	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(g.length)), nil)
	n, err := rand.Int(g.source, limit)
	if err != nil {
		return "", fmt.Errorf("generate delivery code: %w", err)
	}

	return fmt.Sprintf("%0*d", g.length, n.Int64()), nil
}

// OTPVerifier applies a delivery code submission to an order.
type OTPVerifier struct{}

func NewOTPVerifier() OTPVerifier {
	return OTPVerifier{}
}

// Verify checks that the actor may submit codes for the order and consumes the code.
//
// Returns:
//   - nil on a match; the order is marked verified and the code cleared
//   - ErrForbidden when the actor is not the assigned partner, the owning vendor or an admin
//   - ErrOrderTerminal / ErrOtpMismatch from the order itself
func (OTPVerifier) Verify(o *order.Order, code string, actor kernel.Actor, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if !CanVerifyOTP(actor, o) {
		return errs.NewDomainError(errs.ErrForbidden, "%s may not verify the delivery code of order %s", actor, o.ID())
	}

	return o.VerifyDeliveryCode(code, now)
}
