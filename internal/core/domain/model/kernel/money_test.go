package kernel_test

import (
	"testing"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	t.Run("parses and formats", func(t *testing.T) {
		m, err := kernel.MoneyFromString("12.5")

		require.NoError(t, err)
		assert.Equal(t, "12.50", m.String())
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		_, err := kernel.NewMoney(decimal.NewFromInt(-1))
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := kernel.MoneyFromString("twelve")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("arithmetic is exact", func(t *testing.T) {
		price := kernel.MustMoney("0.10")
		total := price.MulInt(3).Add(kernel.MustMoney("0.20"))

		assert.True(t, total.Equal(kernel.MustMoney("0.50")))

		rest, err := total.Sub(kernel.MustMoney("0.50"))
		require.NoError(t, err)
		assert.True(t, rest.Equal(kernel.ZeroMoney))
	})

	t.Run("sub below zero fails", func(t *testing.T) {
		_, err := kernel.MustMoney("1").Sub(kernel.MustMoney("2"))
		require.Error(t, err)
	})
}

func TestActor(t *testing.T) {
	t.Run("parses roles case-insensitively", func(t *testing.T) {
		r, err := kernel.ParseRole(" delivery_partner ")

		require.NoError(t, err)
		assert.Equal(t, kernel.RoleDeliveryPartner, r)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := kernel.NewActor(kernel.NewUUID(), kernel.Role("PIRATE"))
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("requires id", func(t *testing.T) {
		_, err := kernel.NewActor(kernel.UUID{}, kernel.RoleAdmin)
		require.Error(t, err)
	})

	t.Run("zero actor is invalid", func(t *testing.T) {
		require.Error(t, kernel.Actor{}.Validate())
	})
}
