package guard_test

import (
	"errors"
	"testing"

	"routing/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPlanNotConstructed = errors.New("plan must be created via newPlan")

// plan mirrors how commands in this codebase embed the guard: private
// fields, a constructor that sets the guard, and Validate delegating to it.
type plan struct {
	stops int
	guard guard.ConstructorGuard
}

func newPlan(stops int) (plan, error) {
	if stops <= 0 {
		return plan{}, errors.New("a plan needs at least one stop")
	}
	return plan{stops: stops, guard: guard.NewConstructorGuard()}, nil
}

func (p plan) Validate() error {
	return p.guard.Validate(errPlanNotConstructed)
}

func TestConstructorGuard_ConstructedValuePasses(t *testing.T) {
	p, err := newPlan(3)
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	assert.Equal(t, 3, p.stops)
}

func TestConstructorGuard_ZeroValueFails(t *testing.T) {
	var p plan
	require.ErrorIs(t, p.Validate(), errPlanNotConstructed)
}

func TestConstructorGuard_FailedConstructionLeavesZeroValue(t *testing.T) {
	p, err := newPlan(0)
	require.Error(t, err)

	// The constructor returned the zero value, so the guard still trips.
	require.ErrorIs(t, p.Validate(), errPlanNotConstructed)
}

func TestConstructorGuard_CopiesStayValid(t *testing.T) {
	p, err := newPlan(2)
	require.NoError(t, err)

	copied := p
	require.NoError(t, copied.Validate())
}

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed guard accepts any error argument", func(t *testing.T) {
		g := guard.NewConstructorGuard()
		require.NoError(t, g.Validate(errPlanNotConstructed))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero guard returns the given error", func(t *testing.T) {
		var g guard.ConstructorGuard
		err := g.Validate(errPlanNotConstructed)
		assert.Equal(t, errPlanNotConstructed, err)
	})

	t.Run("zero guard falls back to the package default", func(t *testing.T) {
		var g guard.ConstructorGuard
		require.ErrorIs(t, g.Validate(nil), guard.ErrDefaultConstructorGuard)
	})
}
