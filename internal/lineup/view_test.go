package lineup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupedSplitsByTypeInPositionOrder(t *testing.T) {
	snapshot := []*Signup{
		withPos(mkSignup(1, TypeOnline, StatusConfirmed, 0), 2),
		withPos(mkSignup(2, TypeInPerson, StatusConfirmed, 1), 1),
		withPos(mkSignup(3, TypeOnline, StatusWaitlist, 2), 4),
		mkSignup(4, TypeInPerson, StatusPending, 3), // not yet allocated
	}
	v := Grouped(snapshot, false)

	require.Len(t, v.Online, 2)
	require.Len(t, v.InPerson, 2)
	assert.Equal(t, uint64(1), v.Online[0].ID)
	assert.Equal(t, uint64(3), v.Online[1].ID)
	assert.Equal(t, uint64(2), v.InPerson[0].ID)
	assert.Equal(t, uint64(4), v.InPerson[1].ID, "unpositioned signups trail the positioned ones")
	assert.Nil(t, v.InPerson[1].Position)
}

func TestViewsHideInactiveUnlessAsked(t *testing.T) {
	snapshot := []*Signup{
		withPos(mkSignup(1, TypeOnline, StatusConfirmed, 0), 1),
		mkSignup(2, TypeOnline, StatusCancelled, 1),
		mkSignup(3, TypeInPerson, StatusNoShow, 2),
	}

	assert.Len(t, Merged(snapshot, false), 1)

	audit := Merged(snapshot, true)
	require.Len(t, audit, 3)
	assert.Equal(t, uint64(1), audit[0].ID, "inactive entries sort last")
	for _, e := range audit[1:] {
		assert.False(t, e.Status.Active())
	}
}

func TestMergedReflectsAllocationRoundTrip(t *testing.T) {
	snapshot := []*Signup{
		mkSignup(1, TypeOnline, StatusPending, 0),
		mkSignup(2, TypeInPerson, StatusPending, 1),
		mkSignup(3, TypeOnline, StatusPending, 2),
		mkSignup(4, TypeInPerson, StatusPending, 3),
	}
	cfg := numberedCfg(3)
	res, err := Allocate(snapshot, cfg, AllocateOptions{})
	require.NoError(t, err)
	res.Apply(snapshot)

	merged := Merged(snapshot, false)
	require.Len(t, merged, len(res.Assignments))

	// No signup appears twice, the view order matches the computed
	// positions exactly, and no position gap exists below the
	// confirmed count.
	seen := map[uint64]bool{}
	confirmed := 0
	for i, e := range merged {
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
		require.NotNil(t, e.Position)
		assert.Equal(t, res.Assignments[i].SignupID, e.ID)
		assert.Equal(t, res.Assignments[i].Position, *e.Position)
		if e.Status == StatusConfirmed {
			confirmed++
		}
	}
	assert.LessOrEqual(t, confirmed, cfg.MaxSignups)
}
