package lineup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	return NewRegistry(ShowConfig{
		Strategy:         StrategyNumbered,
		MaxSignups:       10,
		SetLengthOptions: []int{3, 5, 7},
	})
}

func TestSubmitNormalizesAndDefaults(t *testing.T) {
	r := testRegistry()
	s, err := r.Submit(SubmitRequest{
		DisplayName: "  Dana K  ",
		Email:       "  Dana.K@Example.COM ",
		Type:        TypeOnline,
		SetLength:   5,
		Notes:       " opens with crowd work ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dana K", s.DisplayName)
	assert.Equal(t, "dana.k@example.com", s.Email)
	assert.Equal(t, "opens with crowd work", s.Notes)
	assert.Equal(t, StatusPending, s.Status)
	assert.Nil(t, s.Position)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestSubmitRejectsDuplicateEmailCaseInsensitive(t *testing.T) {
	r := testRegistry()
	_, err := r.Submit(SubmitRequest{DisplayName: "A", Email: "mic@example.com", Type: TypeOnline, SetLength: 5})
	require.NoError(t, err)

	_, err = r.Submit(SubmitRequest{DisplayName: "B", Email: "MIC@Example.Com", Type: TypeInPerson, SetLength: 3})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Len(t, r.List(), 1, "a rejected submission must not create a record")
}

func TestSubmitAllowsEmailAfterCancellation(t *testing.T) {
	r := testRegistry()
	s, err := r.Submit(SubmitRequest{DisplayName: "A", Email: "mic@example.com", Type: TypeOnline, SetLength: 5})
	require.NoError(t, err)
	_, _, err = r.Transition(s.ID, StatusCancelled)
	require.NoError(t, err)

	// The cancelled record no longer blocks the email.
	_, err = r.Submit(SubmitRequest{DisplayName: "A again", Email: "mic@example.com", Type: TypeOnline, SetLength: 5})
	assert.NoError(t, err)
}

func TestSubmitFieldValidation(t *testing.T) {
	r := testRegistry()
	cases := []struct {
		name string
		req  SubmitRequest
	}{
		{"empty name", SubmitRequest{DisplayName: "   ", Email: "a@b.c", Type: TypeOnline, SetLength: 5}},
		{"empty email", SubmitRequest{DisplayName: "A", Email: " ", Type: TypeOnline, SetLength: 5}},
		{"no at sign", SubmitRequest{DisplayName: "A", Email: "not-an-email", Type: TypeOnline, SetLength: 5}},
		{"embedded space", SubmitRequest{DisplayName: "A", Email: "a b@c.d", Type: TypeOnline, SetLength: 5}},
		{"bad type", SubmitRequest{DisplayName: "A", Email: "a@b.c", Type: "phone", SetLength: 5}},
		{"set length not offered", SubmitRequest{DisplayName: "A", Email: "a@b.c", Type: TypeOnline, SetLength: 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Submit(tc.req)
			assert.ErrorIs(t, err, ErrInvalidField)
		})
	}
	assert.Empty(t, r.List())
}

func TestNewSignupDeduplicatesAgainstSnapshot(t *testing.T) {
	// NewSignup is the shared rule set for the in-memory registry and
	// the persistence path, which hands it the transaction's snapshot.
	cfg := ShowConfig{Strategy: StrategyNumbered, SetLengthOptions: []int{5}}
	now := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)
	existing := []*Signup{
		{ID: 1, Email: "mic@example.com", Status: StatusWaitlist},
		{ID: 2, Email: "gone@example.com", Status: StatusCancelled},
	}

	_, err := NewSignup(cfg, existing, SubmitRequest{DisplayName: "B", Email: "MIC@Example.Com", Type: TypeOnline, SetLength: 5}, now)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	s, err := NewSignup(cfg, existing, SubmitRequest{DisplayName: "C", Email: "gone@example.com", Type: TypeOnline, SetLength: 5}, now)
	require.NoError(t, err, "a cancelled signup does not block its email")
	assert.Equal(t, StatusPending, s.Status)
	assert.Nil(t, s.Position)
	assert.Equal(t, now.UTC(), s.CreatedAt, "the window check and the timestamp share one clock reading")
}

func TestSubmitRespectsSignupWindow(t *testing.T) {
	opens := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	closes := opens.Add(2 * time.Hour)
	r := NewRegistry(ShowConfig{
		Strategy:         StrategyNumbered,
		SetLengthOptions: []int{5},
		OpensAt:          opens,
		ClosesAt:         closes,
	})
	req := SubmitRequest{DisplayName: "A", Email: "a@b.c", Type: TypeOnline, SetLength: 5}

	r.now = func() time.Time { return opens.Add(-time.Minute) }
	_, err := r.Submit(req)
	assert.ErrorIs(t, err, ErrInvalidState)

	r.now = func() time.Time { return opens.Add(time.Hour) }
	_, err = r.Submit(req)
	assert.NoError(t, err)

	r.now = func() time.Time { return closes.Add(time.Minute) }
	_, err = r.Submit(SubmitRequest{DisplayName: "B", Email: "b@b.c", Type: TypeOnline, SetLength: 5})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRemoveOnlyPending(t *testing.T) {
	r := testRegistry()
	pending, err := r.Submit(SubmitRequest{DisplayName: "A", Email: "a@b.c", Type: TypeOnline, SetLength: 5})
	require.NoError(t, err)
	confirmed, err := r.Submit(SubmitRequest{DisplayName: "B", Email: "b@b.c", Type: TypeInPerson, SetLength: 3})
	require.NoError(t, err)
	_, _, err = r.Transition(confirmed.ID, StatusConfirmed)
	require.NoError(t, err)

	assert.ErrorIs(t, r.Remove(confirmed.ID), ErrInvalidState)
	assert.NoError(t, r.Remove(pending.ID))
	assert.ErrorIs(t, r.Remove(pending.ID), ErrNotFound)

	// The deleted signup is gone from every future allocation pass.
	res, err := Allocate(r.List(), r.Config(), AllocateOptions{})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, confirmed.ID, res.Assignments[0].SignupID)
}

func TestListReturnsArrivalOrder(t *testing.T) {
	r := testRegistry()
	for _, email := range []string{"one@x.y", "two@x.y", "three@x.y"} {
		_, err := r.Submit(SubmitRequest{DisplayName: email, Email: email, Type: TypeOnline, SetLength: 5})
		require.NoError(t, err)
	}
	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "one@x.y", list[0].Email)
	assert.Equal(t, "two@x.y", list[1].Email)
	assert.Equal(t, "three@x.y", list[2].Email)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.Before(list[i-1].CreatedAt))
	}
}

func TestListReturnsCopies(t *testing.T) {
	r := testRegistry()
	s, err := r.Submit(SubmitRequest{DisplayName: "A", Email: "a@b.c", Type: TypeOnline, SetLength: 5})
	require.NoError(t, err)

	r.List()[0].DisplayName = "tampered"
	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.DisplayName)
}

func TestRegistryApplyRoundTrip(t *testing.T) {
	r := testRegistry()
	a, err := r.Submit(SubmitRequest{DisplayName: "A", Email: "a@b.c", Type: TypeOnline, SetLength: 5})
	require.NoError(t, err)
	b, err := r.Submit(SubmitRequest{DisplayName: "B", Email: "b@b.c", Type: TypeInPerson, SetLength: 3})
	require.NoError(t, err)

	res, err := Allocate(r.List(), r.Config(), AllocateOptions{})
	require.NoError(t, err)
	r.Apply(res)

	gotA, err := r.Get(a.ID)
	require.NoError(t, err)
	gotB, err := r.Get(b.ID)
	require.NoError(t, err)
	require.NotNil(t, gotA.Position)
	require.NotNil(t, gotB.Position)
	assert.Equal(t, 2, *gotA.Position)
	assert.Equal(t, 1, *gotB.Position)
	assert.Equal(t, StatusConfirmed, gotA.Status)
	assert.Equal(t, StatusConfirmed, gotB.Status)
}
