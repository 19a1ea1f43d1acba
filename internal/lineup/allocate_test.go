package lineup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBase = time.Date(2025, 6, 3, 19, 0, 0, 0, time.UTC)

// mkSignup builds an eligible signup arriving n minutes after the base
// time.  Arrival order in tests therefore follows the n arguments.
func mkSignup(id uint64, t SignupType, status Status, n int) *Signup {
	return &Signup{
		ID:          id,
		DisplayName: "perf",
		Email:       "perf@example.com",
		Type:        t,
		SetLength:   5,
		Status:      status,
		CreatedAt:   testBase.Add(time.Duration(n) * time.Minute),
	}
}

func withPos(s *Signup, pos int) *Signup {
	s.Position = &pos
	return s
}

func numberedCfg(capacity int) ShowConfig {
	return ShowConfig{Strategy: StrategyNumbered, MaxSignups: capacity, SetLengthOptions: []int{3, 5, 7}}
}

func bucketCfg(capacity int) ShowConfig {
	return ShowConfig{Strategy: StrategyBucket, MaxSignups: capacity, SetLengthOptions: []int{3, 5, 7}}
}

func curatedCfg(capacity int) ShowConfig {
	return ShowConfig{Strategy: StrategyCurated, MaxSignups: capacity, SetLengthOptions: []int{3, 5, 7}}
}

func positionOf(t *testing.T, res Result, id uint64) int {
	t.Helper()
	for _, a := range res.Assignments {
		if a.SignupID == id {
			return a.Position
		}
	}
	t.Fatalf("no assignment for signup %d", id)
	return 0
}

func statusOf(t *testing.T, res Result, id uint64) Status {
	t.Helper()
	for _, a := range res.Assignments {
		if a.SignupID == id {
			return a.Status
		}
	}
	t.Fatalf("no assignment for signup %d", id)
	return ""
}

func TestNumberedInterleavesByParity(t *testing.T) {
	// The worked example: capacity 2, online A then in-person B then
	// online C.  B takes position 1, A position 2, C position 4 and the
	// waitlist because 4 exceeds capacity.
	snapshot := []*Signup{
		mkSignup(1, TypeOnline, StatusPending, 0),   // A
		mkSignup(2, TypeInPerson, StatusPending, 1), // B
		mkSignup(3, TypeOnline, StatusPending, 2),   // C
	}
	res, err := Allocate(snapshot, numberedCfg(2), AllocateOptions{})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 3)

	assert.Equal(t, 2, positionOf(t, res, 1))
	assert.Equal(t, 1, positionOf(t, res, 2))
	assert.Equal(t, 4, positionOf(t, res, 3))
	assert.Equal(t, StatusConfirmed, statusOf(t, res, 1))
	assert.Equal(t, StatusConfirmed, statusOf(t, res, 2))
	assert.Equal(t, StatusWaitlist, statusOf(t, res, 3))
}

func TestNumberedPositionsIncreaseWithinType(t *testing.T) {
	snapshot := []*Signup{
		mkSignup(1, TypeOnline, StatusPending, 0),
		mkSignup(2, TypeOnline, StatusPending, 1),
		mkSignup(3, TypeInPerson, StatusPending, 2),
		mkSignup(4, TypeOnline, StatusPending, 3),
		mkSignup(5, TypeInPerson, StatusPending, 4),
	}
	res, err := Allocate(snapshot, numberedCfg(0), AllocateOptions{})
	require.NoError(t, err)

	// Online signups occupy strictly increasing even positions in
	// arrival order; walk-ups strictly increasing odd positions.
	assert.Equal(t, []int{2, 4, 6}, []int{positionOf(t, res, 1), positionOf(t, res, 2), positionOf(t, res, 4)})
	assert.Equal(t, []int{1, 3}, []int{positionOf(t, res, 3), positionOf(t, res, 5)})
	for _, a := range res.Assignments {
		assert.Equal(t, StatusConfirmed, a.Status, "unlimited capacity confirms everyone")
	}
}

func TestNumberedCancellationFreesExactlyOneSlot(t *testing.T) {
	// Three walk-ups under capacity 2: positions 1, 3 confirmed and 5
	// waitlisted.  Cancelling position 1 must hand slot 1 to the
	// earliest waitlisted walk-up while position 3 stays put.
	a := withPos(mkSignup(1, TypeInPerson, StatusConfirmed, 0), 1)
	b := withPos(mkSignup(2, TypeInPerson, StatusConfirmed, 1), 3)
	c := withPos(mkSignup(3, TypeInPerson, StatusWaitlist, 2), 5)
	_, err := Transition(a, StatusCancelled)
	require.NoError(t, err)

	res, err := Allocate([]*Signup{a, b, c}, numberedCfg(2), AllocateOptions{})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 2, "cancelled signup is out of the pool")

	assert.Equal(t, 3, positionOf(t, res, 2), "unaffected signup keeps its position")
	assert.Equal(t, 1, positionOf(t, res, 3), "waitlisted signup takes the freed slot")
	assert.Equal(t, StatusConfirmed, statusOf(t, res, 3))
}

func TestNumberedWaitlistedDoNotHoldTheirPositions(t *testing.T) {
	// Capacity 1 walk-up lineup: position 1 confirmed, position 3
	// waitlisted.  After position 1 cancels, the waitlisted signup must
	// move into the freed slot and confirm; a brand-new walk-up joins
	// behind it, not ahead of it.
	a := withPos(mkSignup(1, TypeInPerson, StatusConfirmed, 0), 1)
	b := withPos(mkSignup(2, TypeInPerson, StatusWaitlist, 1), 3)
	_, err := Transition(a, StatusCancelled)
	require.NoError(t, err)
	c := mkSignup(3, TypeInPerson, StatusPending, 2)

	res, err := Allocate([]*Signup{a, b, c}, numberedCfg(1), AllocateOptions{})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 2)

	assert.Equal(t, 1, positionOf(t, res, 2), "waitlist head takes the freed slot")
	assert.Equal(t, StatusConfirmed, statusOf(t, res, 2))
	assert.Equal(t, 3, positionOf(t, res, 3), "the newcomer queues behind the promoted signup")
	assert.Equal(t, StatusWaitlist, statusOf(t, res, 3))
}

func TestNumberedKeepsHeldPositionsAcrossReruns(t *testing.T) {
	snapshot := []*Signup{
		mkSignup(1, TypeOnline, StatusPending, 0),
		mkSignup(2, TypeInPerson, StatusPending, 1),
	}
	first, err := Allocate(snapshot, numberedCfg(0), AllocateOptions{})
	require.NoError(t, err)
	first.Apply(snapshot)

	// A later arrival must not move anyone already placed.
	snapshot = append(snapshot, mkSignup(3, TypeOnline, StatusPending, 2))
	second, err := Allocate(snapshot, numberedCfg(0), AllocateOptions{})
	require.NoError(t, err)

	assert.Equal(t, positionOf(t, first, 1), positionOf(t, second, 1))
	assert.Equal(t, positionOf(t, first, 2), positionOf(t, second, 2))
	assert.Equal(t, 4, positionOf(t, second, 3))
}

func TestBucketSameSeedSameLineup(t *testing.T) {
	build := func() []*Signup {
		return []*Signup{
			mkSignup(1, TypeOnline, StatusPending, 0),
			mkSignup(2, TypeInPerson, StatusPending, 1),
			mkSignup(3, TypeOnline, StatusPending, 2),
			mkSignup(4, TypeInPerson, StatusPending, 3),
			mkSignup(5, TypeOnline, StatusPending, 4),
		}
	}
	first, err := Allocate(build(), bucketCfg(3), AllocateOptions{Seed: 42})
	require.NoError(t, err)
	second, err := Allocate(build(), bucketCfg(3), AllocateOptions{Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := Allocate(build(), bucketCfg(3), AllocateOptions{Seed: 7})
	require.NoError(t, err)
	assert.NotEqual(t, first.Assignments, other.Assignments, "a different seed draws a different lineup")
}

func TestBucketAppendOnlyStability(t *testing.T) {
	snapshot := []*Signup{
		mkSignup(1, TypeOnline, StatusPending, 0),
		mkSignup(2, TypeInPerson, StatusPending, 1),
		mkSignup(3, TypeOnline, StatusPending, 2),
	}
	first, err := Allocate(snapshot, bucketCfg(2), AllocateOptions{Seed: 99})
	require.NoError(t, err)
	first.Apply(snapshot)

	snapshot = append(snapshot, mkSignup(4, TypeInPerson, StatusPending, 3))
	second, err := Allocate(snapshot, bucketCfg(2), AllocateOptions{Seed: 99})
	require.NoError(t, err)

	// Previously drawn entries keep their positions; the newcomer joins
	// the waitlist tail.
	for _, id := range []uint64{1, 2, 3} {
		assert.Equal(t, positionOf(t, first, id), positionOf(t, second, id))
	}
	assert.Equal(t, 4, positionOf(t, second, 4))
	assert.Equal(t, StatusWaitlist, statusOf(t, second, 4))
}

func TestBucketCancellationPromotesInDrawOrder(t *testing.T) {
	snapshot := []*Signup{
		mkSignup(1, TypeOnline, StatusPending, 0),
		mkSignup(2, TypeInPerson, StatusPending, 1),
		mkSignup(3, TypeOnline, StatusPending, 2),
	}
	first, err := Allocate(snapshot, bucketCfg(2), AllocateOptions{Seed: 5})
	require.NoError(t, err)
	first.Apply(snapshot)

	var confirmedID, waitlistedID uint64
	for _, a := range first.Assignments {
		switch a.Position {
		case 1:
			confirmedID = a.SignupID
		case 3:
			waitlistedID = a.SignupID
		}
	}
	for _, s := range snapshot {
		if s.ID == confirmedID {
			_, err := Transition(s, StatusCancelled)
			require.NoError(t, err)
		}
	}

	second, err := Allocate(snapshot, bucketCfg(2), AllocateOptions{Seed: 5})
	require.NoError(t, err)
	require.Len(t, second.Assignments, 2)
	assert.Equal(t, StatusConfirmed, statusOf(t, second, waitlistedID), "waitlist head is promoted by the same draw")
}

func TestBucketRedrawIgnoresHeldPositions(t *testing.T) {
	snapshot := []*Signup{
		withPos(mkSignup(1, TypeOnline, StatusConfirmed, 0), 1),
		withPos(mkSignup(2, TypeInPerson, StatusConfirmed, 1), 2),
		withPos(mkSignup(3, TypeOnline, StatusWaitlist, 2), 3),
	}
	redraw, err := Allocate(snapshot, bucketCfg(2), AllocateOptions{Seed: 1234, Redraw: true})
	require.NoError(t, err)

	again, err := Allocate(snapshot, bucketCfg(2), AllocateOptions{Seed: 1234, Redraw: true})
	require.NoError(t, err)
	assert.Equal(t, redraw, again, "a redraw is still deterministic in the seed")
}

func TestConfirmedNeverExceedsCapacity(t *testing.T) {
	for _, cfg := range []ShowConfig{numberedCfg(3), bucketCfg(3)} {
		snapshot := make([]*Signup, 0, 8)
		for i := 1; i <= 8; i++ {
			typ := TypeOnline
			if i%3 == 0 {
				typ = TypeInPerson
			}
			snapshot = append(snapshot, mkSignup(uint64(i), typ, StatusPending, i))
		}
		res, err := Allocate(snapshot, cfg, AllocateOptions{Seed: 17})
		require.NoError(t, err)
		confirmed := 0
		for _, a := range res.Assignments {
			if a.Status == StatusConfirmed {
				confirmed++
			}
		}
		assert.LessOrEqual(t, confirmed, cfg.MaxSignups, "strategy %s", cfg.Strategy)
	}
}

func TestCuratedReorderAssignsSequentialPositions(t *testing.T) {
	snapshot := []*Signup{
		mkSignup(1, TypeOnline, StatusPending, 0),
		mkSignup(2, TypeInPerson, StatusPending, 1),
		mkSignup(3, TypeOnline, StatusPending, 2),
	}
	res, err := Reorder(snapshot, curatedCfg(2), []uint64{3, 1, 2})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 3)

	assert.Equal(t, 1, positionOf(t, res, 3))
	assert.Equal(t, 2, positionOf(t, res, 1))
	assert.Equal(t, 3, positionOf(t, res, 2))
	// Over-capacity entries are reported, never demoted.
	assert.Equal(t, []uint64{2}, res.Overflow)
	assert.Equal(t, StatusPending, statusOf(t, res, 2))
}

func TestCuratedReorderRejectsBadInput(t *testing.T) {
	snapshot := []*Signup{
		mkSignup(1, TypeOnline, StatusPending, 0),
		mkSignup(2, TypeInPerson, StatusCancelled, 1),
	}
	_, err := Reorder(snapshot, curatedCfg(0), []uint64{99})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Reorder(snapshot, curatedCfg(0), []uint64{2})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = Reorder(snapshot, curatedCfg(0), []uint64{1, 1})
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = Reorder(snapshot, numberedCfg(0), []uint64{1})
	assert.ErrorIs(t, err, ErrInvalidStrategy)
}

func TestAllocateValidatesConfig(t *testing.T) {
	snapshot := []*Signup{mkSignup(1, TypeOnline, StatusPending, 0)}

	_, err := Allocate(snapshot, ShowConfig{Strategy: "raffle", SetLengthOptions: []int{5}}, AllocateOptions{})
	assert.ErrorIs(t, err, ErrInvalidStrategy)

	_, err = Allocate(snapshot, ShowConfig{Strategy: StrategyNumbered}, AllocateOptions{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAllocateEmptyEligibleSetIsNotAnError(t *testing.T) {
	res, err := Allocate(nil, numberedCfg(5), AllocateOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Assignments)

	inactiveOnly := []*Signup{mkSignup(1, TypeOnline, StatusCancelled, 0)}
	res, err = Allocate(inactiveOnly, bucketCfg(5), AllocateOptions{Seed: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Assignments)
}

func TestApplyClearsUncoveredPositions(t *testing.T) {
	kept := withPos(mkSignup(1, TypeInPerson, StatusConfirmed, 0), 1)
	stale := withPos(mkSignup(2, TypeOnline, StatusConfirmed, 1), 2)
	res := Result{Assignments: []Assignment{{SignupID: 1, Position: 1, Status: StatusConfirmed}}}
	res.Apply([]*Signup{kept, stale})

	require.NotNil(t, kept.Position)
	assert.Equal(t, 1, *kept.Position)
	assert.Nil(t, stale.Position, "eligible signups missing from the result lose their position")
}
