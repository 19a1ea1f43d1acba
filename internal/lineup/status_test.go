package lineup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionAllowsAnyStatePair(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusWaitlist, StatusCancelled, StatusNoShow}
	for _, from := range all {
		for _, to := range all {
			s := mkSignup(1, TypeOnline, from, 0)
			_, err := Transition(s, to)
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Equal(t, to, s.Status)
		}
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	s := mkSignup(1, TypeOnline, StatusPending, 0)
	_, err := Transition(s, "vanished")
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Equal(t, StatusPending, s.Status, "a failed transition leaves the signup untouched")
}

func TestTransitionClearsPositionOnDropout(t *testing.T) {
	for _, to := range []Status{StatusCancelled, StatusNoShow} {
		s := withPos(mkSignup(1, TypeInPerson, StatusConfirmed, 0), 3)
		needs, err := Transition(s, to)
		require.NoError(t, err)
		assert.Nil(t, s.Position)
		assert.True(t, needs, "dropping out frees a slot and warrants re-allocation")
	}
}

func TestTransitionReactivationClearsStalePosition(t *testing.T) {
	// A cancelled signup being reinstated must not silently regain its
	// old slot; the engine has to run again first.
	s := withPos(mkSignup(1, TypeOnline, StatusCancelled, 0), 4)
	needs, err := Transition(s, StatusConfirmed)
	require.NoError(t, err)
	assert.Nil(t, s.Position)
	assert.True(t, needs)
}

func TestTransitionWithinActiveSet(t *testing.T) {
	// pending -> confirmed with no position held: eligibility is
	// unchanged, nothing to re-allocate.
	s := mkSignup(1, TypeOnline, StatusPending, 0)
	needs, err := Transition(s, StatusConfirmed)
	require.NoError(t, err)
	assert.False(t, needs)

	// The same move with a held position may now disagree with the
	// capacity split, so the engine gets another look.
	held := withPos(mkSignup(2, TypeOnline, StatusWaitlist, 0), 6)
	needs, err = Transition(held, StatusConfirmed)
	require.NoError(t, err)
	assert.True(t, needs)
	require.NotNil(t, held.Position)
	assert.Equal(t, 6, *held.Position, "positions survive moves within the active set")
}

func TestTransitionSameStatusIsNoop(t *testing.T) {
	s := withPos(mkSignup(1, TypeOnline, StatusConfirmed, 0), 2)
	needs, err := Transition(s, StatusConfirmed)
	require.NoError(t, err)
	assert.False(t, needs)
	require.NotNil(t, s.Position)
	assert.Equal(t, 2, *s.Position)
}
