package errs_test

import (
	"errors"
	"testing"

	"fooddelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentErrors_Messages(t *testing.T) {
	cause := errors.New("checkout payload truncated")

	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "order not found",
			err:      errs.NewObjectNotFoundError("orderId", "7b0c"),
			sentinel: errs.ErrObjectNotFound,
			message:  "object not found: 7b0c",
		},
		{
			name:     "order not found with cause",
			err:      errs.NewObjectNotFoundErrorWithCause("orderId", "7b0c", cause),
			sentinel: errs.ErrObjectNotFound,
			message:  "object not found: param is: orderId, ID is: 7b0c (cause: checkout payload truncated)",
		},
		{
			name:     "invalid delivery charge",
			err:      errs.NewValueIsInvalidError("deliveryCharge"),
			sentinel: errs.ErrValueIsInvalid,
			message:  "value is invalid: deliveryCharge",
		},
		{
			name:     "invalid items with cause",
			err:      errs.NewValueIsInvalidErrorWithCause("items", cause),
			sentinel: errs.ErrValueIsInvalid,
			message:  "value is invalid: items (cause: checkout payload truncated)",
		},
		{
			name:     "otp length out of range",
			err:      errs.NewValueIsOutOfRangeError("otpLength", 12, 4, 9),
			sentinel: errs.ErrValueIsOutOfRange,
			message:  "value is invalid: 12 is otpLength, min value is 4, max value is 9",
		},
		{
			name:     "quantity out of range with cause",
			err:      errs.NewValueIsOutOfRangeErrorWithCause("quantity", 0, 1, 99, cause),
			sentinel: errs.ErrValueIsOutOfRange,
			message:  "value is invalid: 0 is quantity, min value is 1, max value is 99 (cause: checkout payload truncated)",
		},
		{
			name:     "missing vendor",
			err:      errs.NewValueIsRequiredError("vendorId"),
			sentinel: errs.ErrValueIsRequired,
			message:  "value is required: vendorId",
		},
		{
			name:     "missing vendor with cause",
			err:      errs.NewValueIsRequiredErrorWithCause("vendorId", cause),
			sentinel: errs.ErrValueIsRequired,
			message:  "value is required: vendorId (cause: checkout payload truncated)",
		},
		{
			name:     "stale version with cause",
			err:      errs.NewVersionIsInvalidError("version", cause),
			sentinel: errs.ErrVersionIsInvalid,
			message:  "version is invalid: version (cause: checkout payload truncated)",
		},
		{
			name:     "stale version",
			err:      errs.NewVersionIsInvalidErrorWithCause("version"),
			sentinel: errs.ErrVersionIsInvalid,
			message:  "version is invalid: version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestArgumentErrors_KeepFields(t *testing.T) {
	cause := errors.New("bad decimal")

	outOfRange := errs.NewValueIsOutOfRangeErrorWithCause("radiusKm", -1.5, 0, 50, cause)
	assert.Equal(t, "radiusKm", outOfRange.ParamName)
	assert.InDelta(t, -1.5, outOfRange.Value, 0)
	assert.Equal(t, 0, outOfRange.Min)
	assert.Equal(t, 50, outOfRange.Max)
	assert.Equal(t, cause, outOfRange.Cause)

	notFound := errs.NewObjectNotFoundError("partnerId", 42)
	assert.Equal(t, "partnerId", notFound.ParamName)
	assert.Equal(t, 42, notFound.ID)
	require.NoError(t, notFound.Cause)
}

func TestArgumentErrors_StripLineBreaks(t *testing.T) {
	err := errs.NewValueIsOutOfRangeError("note", "ring twice\r\nleave at door", 0, 10)

	assert.Contains(t, err.Error(), "ring twice leave at door")
	assert.NotContains(t, err.Error(), "\n")
	assert.NotContains(t, err.Error(), "\r")
}

func TestArgumentErrors_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errs.Code
	}{
		{"not found", errs.NewObjectNotFoundError("orderId", "x"), errs.CodeNotFound},
		{"invalid", errs.NewValueIsInvalidError("status"), errs.CodeInvalidArgument},
		{"required", errs.NewValueIsRequiredError("code"), errs.CodeInvalidArgument},
		{"out of range", errs.NewValueIsOutOfRangeError("otpLength", 2, 4, 9), errs.CodeInvalidArgument},
		{"version", errs.NewVersionIsInvalidErrorWithCause("version"), errs.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, errs.CodeOf(tt.err))
			assert.Equal(t, tt.err.Error(), errs.MessageOf(tt.err))
		})
	}
}
