package guard_test

import (
	"errors"
	"sync"
	"testing"

	"fooddelivery/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("properly_constructed_guard_returns_nil", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		var g guard.ConstructorGuard
		expected := errors.New("command not constructed")

		err := g.Validate(expected)

		require.Error(t, err)
		assert.Equal(t, expected, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.Equal(t, guard.ErrDefaultConstructorGuard, g.Validate(nil))
	})
}

// TestConstructorGuard_EmbeddedInCommand shows the pattern used by command structs.
func TestConstructorGuard_EmbeddedInCommand(t *testing.T) {
	type verifyCode struct {
		code  string
		guard guard.ConstructorGuard
	}
	errNotConstructed := errors.New("verifyCode must be created via newVerifyCode")

	newVerifyCode := func(code string) (verifyCode, error) {
		if code == "" {
			return verifyCode{}, errors.New("code is required")
		}
		return verifyCode{code: code, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructed command validates", func(t *testing.T) {
		cmd, err := newVerifyCode("1234")

		require.NoError(t, err)
		require.NoError(t, cmd.guard.Validate(errNotConstructed))
	})

	t.Run("literal command fails", func(t *testing.T) {
		cmd := verifyCode{code: "1234"}

		require.ErrorIs(t, cmd.guard.Validate(errNotConstructed), errNotConstructed)
	})
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Validate(nil))
		}()
	}
	wg.Wait()
}
