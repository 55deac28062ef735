package access

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var alice = Identity{UserID: "u-1", Name: "Alice", Email: "alice@example.com"}

func newTestManager() (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	return NewManager(store, zap.NewNop()), store
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	out, s, err := m.Evaluate(ctx, "sid", "/discover")
	require.NoError(t, err)
	assert.Equal(t, SignedOut, s.Status())
	assert.Equal(t, RedirectToLanding, out.Decision)

	_, err = m.SignUp(ctx, "sid", alice)
	require.NoError(t, err)
	out, s, err = m.Evaluate(ctx, "sid", "/discover")
	require.NoError(t, err)
	assert.Equal(t, SignedInIncomplete, s.Status())
	assert.Equal(t, RedirectToProfile, out.Decision)
	assert.Equal(t, "Alice", s.UserName)

	_, err = m.CompleteProfile(ctx, "sid", []byte(`{"name":"Alice"}`))
	require.NoError(t, err)
	out, s, err = m.Evaluate(ctx, "sid", "/discover")
	require.NoError(t, err)
	assert.Equal(t, SignedInComplete, s.Status())
	assert.Equal(t, Allow, out.Decision)

	blob, ok, err := m.CachedProfile(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"name":"Alice"}`, string(blob))

	require.NoError(t, m.SignOut(ctx, "sid"))
	s, err = m.State(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, SignedOut, s.Status())
}

func TestManager_SignInRemembersCompletion(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	// never completed: sign-in lands on incomplete
	s, err := m.SignIn(ctx, "first", alice)
	require.NoError(t, err)
	assert.Equal(t, SignedInIncomplete, s.Status())

	_, err = m.CompleteProfile(ctx, "first", nil)
	require.NoError(t, err)
	require.NoError(t, m.SignOut(ctx, "first"))

	// a fresh session for the same user starts complete
	s, err = m.SignIn(ctx, "second", alice)
	require.NoError(t, err)
	assert.Equal(t, SignedInComplete, s.Status())

	// another user is unaffected
	s, err = m.SignIn(ctx, "third", Identity{UserID: "u-2", Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, SignedInIncomplete, s.Status())
}

func TestManager_SignInTrustsDurableCompletion(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager()

	done := alice
	done.ProfileComplete = true
	s, err := m.SignIn(ctx, "sid", done)
	require.NoError(t, err)
	assert.Equal(t, SignedInComplete, s.Status())

	// the flag is written back, so a later sign-in without it stays complete
	user, err := store.Load(ctx, userKey(alice.UserID))
	require.NoError(t, err)
	assert.Equal(t, "true", user[fieldPreferencesSet])
	s, err = m.SignIn(ctx, "other", alice)
	require.NoError(t, err)
	assert.Equal(t, SignedInComplete, s.Status())
}

func TestManager_SignUpResetsCompletion(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	_, err := m.SignUp(ctx, "sid", alice)
	require.NoError(t, err)
	s, err := m.State(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, s.ProfileComplete)
}

func TestManager_CompleteProfileRequiresSignIn(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	_, err := m.CompleteProfile(ctx, "sid", nil)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	s, err := m.State(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, SignedOut, s.Status())
}

func TestManager_EmptySession(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	_, err := m.SignUp(ctx, "", alice)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = m.CompleteProfile(ctx, "", nil)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, m.SignOut(ctx, ""))

	s, err := m.State(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, SignedOut, s.Status())
}

// Sign-out through one handle is seen by the next read through another.
func TestManager_CrossClientSignOut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewManager(store, nil)
	b := NewManager(store, nil)

	_, err := a.SignIn(ctx, "sid", alice)
	require.NoError(t, err)
	require.NoError(t, b.SignOut(ctx, "sid"))

	out, _, err := a.Evaluate(ctx, "sid", "/groups")
	require.NoError(t, err)
	assert.Equal(t, RedirectToLanding, out.Decision)
}

func TestManager_Subscribe(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	events, cancel := m.Subscribe(4)
	defer cancel()

	_, err := m.SignUp(ctx, "sid", alice)
	require.NoError(t, err)
	_, err = m.CompleteProfile(ctx, "sid", nil)
	require.NoError(t, err)
	require.NoError(t, m.SignOut(ctx, "sid"))

	var got []Status
	for i := 0; i < 3; i++ {
		ev := <-events
		assert.Equal(t, "sid", ev.SessionID)
		got = append(got, ev.State.Status())
	}
	assert.Equal(t, []Status{SignedInIncomplete, SignedInComplete, SignedOut}, got)

	cancel()
	_, open := <-events
	assert.False(t, open)
	cancel()
}

func TestManager_SlowSubscriberDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	_, cancel := m.Subscribe(0)
	defer cancel()

	_, err := m.SignIn(ctx, "sid", alice)
	require.NoError(t, err)
}

func TestManager_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = m.SignIn(ctx, "sid", alice)
			} else {
				_, _ = m.State(ctx, "sid")
			}
		}(i)
	}
	wg.Wait()

	s, err := m.State(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, s.SignedIn)
}

type failingStore struct{ *MemoryStore }

func (f *failingStore) Save(context.Context, string, map[string]string) error {
	return errors.New("store down")
}

func TestManager_StoreFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: NewMemoryStore()}
	m := NewManager(store, nil)

	_, err := m.SignUp(ctx, "sid", alice)
	require.Error(t, err)

	s, err := m.State(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, SignedOut, s.Status())
}

// sessionFailStore accepts user records but rejects session writes.
type sessionFailStore struct{ *MemoryStore }

func (f *sessionFailStore) Save(ctx context.Context, key string, fields map[string]string) error {
	if strings.HasPrefix(key, "session:") {
		return errors.New("store down")
	}
	return f.MemoryStore.Save(ctx, key, fields)
}

func TestManager_SignUpUndoesUserRecord(t *testing.T) {
	ctx := context.Background()
	store := &sessionFailStore{MemoryStore: NewMemoryStore()}
	m := NewManager(store, nil)

	_, err := m.SignUp(ctx, "sid", alice)
	require.Error(t, err)

	user, err := store.Load(ctx, userKey(alice.UserID))
	require.NoError(t, err)
	assert.Empty(t, user)
}
