package access

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrNotSignedIn is returned when completing a profile for a signed-out session.
	ErrNotSignedIn = errors.New("session is not signed in")
	// ErrNoSession is returned for mutations without a session id.
	ErrNoSession = errors.New("missing session id")
)

// Identity is who a session signs in as. ProfileComplete carries a
// completion flag the caller already holds from durable storage.
type Identity struct {
	UserID          string
	Name            string
	Email           string
	ProfileComplete bool
}

// Event is published after every successful state change.
type Event struct {
	SessionID string
	State     State
}

// Manager is the single writer of session access state. Every flag mutation
// goes through it; readers either poll State or subscribe to changes.
type Manager struct {
	store Store
	log   *zap.Logger

	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
}

func NewManager(store Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, log: log, subs: make(map[int]chan Event)}
}

// SignUp moves the session to signedInIncomplete and records the new user as
// not yet having completed the profile step.
func (m *Manager) SignUp(ctx context.Context, sessionID string, id Identity) (State, error) {
	if sessionID == "" {
		return State{}, ErrNoSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(ctx, userKey(id.UserID), map[string]string{fieldPreferencesSet: formatFlag(false)}); err != nil {
		return State{}, fmt.Errorf("record user: %w", err)
	}
	s, err := m.writeSession(ctx, sessionID, id, false)
	if err != nil {
		if derr := m.store.Delete(ctx, userKey(id.UserID)); derr != nil {
			m.log.Warn("undo user record", zap.String("user_id", id.UserID), zap.Error(derr))
		}
		return State{}, err
	}
	return s, nil
}

// SignIn moves the session to signedInComplete when the user's completion flag
// was recorded earlier, either in the store or by id.ProfileComplete, otherwise
// to signedInIncomplete. A flag known only to the caller is written back.
func (m *Manager) SignIn(ctx context.Context, sessionID string, id Identity) (State, error) {
	if sessionID == "" {
		return State{}, ErrNoSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user, err := m.store.Load(ctx, userKey(id.UserID))
	if err != nil {
		return State{}, fmt.Errorf("load user: %w", err)
	}
	complete := parseFlag(user[fieldPreferencesSet])
	if id.ProfileComplete && !complete {
		if err := m.store.Save(ctx, userKey(id.UserID), map[string]string{fieldPreferencesSet: formatFlag(true)}); err != nil {
			return State{}, fmt.Errorf("record user: %w", err)
		}
		complete = true
	}
	return m.writeSession(ctx, sessionID, id, complete)
}

// CompleteProfile marks the profile step as done for the session's user.
// profile is the serialized profile cached alongside the flags; it may be nil.
func (m *Manager) CompleteProfile(ctx context.Context, sessionID string, profile []byte) (State, error) {
	if sessionID == "" {
		return State{}, ErrNoSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	fields, err := m.store.Load(ctx, sessionKey(sessionID))
	if err != nil {
		return State{}, fmt.Errorf("load session: %w", err)
	}
	cur := stateFromFields(sessionID, fields)
	if !cur.SignedIn {
		return cur, ErrNotSignedIn
	}

	if cur.UserID != "" {
		if err := m.store.Save(ctx, userKey(cur.UserID), map[string]string{fieldPreferencesSet: formatFlag(true)}); err != nil {
			return cur, fmt.Errorf("record user: %w", err)
		}
	}
	update := map[string]string{fieldPreferencesSet: formatFlag(true)}
	if profile != nil {
		update[fieldProfile] = string(profile)
	}
	if err := m.store.Save(ctx, sessionKey(sessionID), update); err != nil {
		return cur, fmt.Errorf("save session: %w", err)
	}

	cur.ProfileComplete = true
	m.publish(cur)
	return cur, nil
}

// SignOut clears the session from any state.
func (m *Manager) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, sessionKey(sessionID)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.publish(State{SessionID: sessionID})
	return nil
}

// State reads the current flags. An unknown or empty session is signed out.
func (m *Manager) State(ctx context.Context, sessionID string) (State, error) {
	if sessionID == "" {
		return State{}, nil
	}
	fields, err := m.store.Load(ctx, sessionKey(sessionID))
	if err != nil {
		return State{SessionID: sessionID}, fmt.Errorf("load session: %w", err)
	}
	return stateFromFields(sessionID, fields), nil
}

// CachedProfile returns the serialized profile saved by CompleteProfile, if any.
func (m *Manager) CachedProfile(ctx context.Context, sessionID string) ([]byte, bool, error) {
	fields, err := m.store.Load(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	blob, ok := fields[fieldProfile]
	if !ok {
		return nil, false, nil
	}
	return []byte(blob), true, nil
}

// Evaluate re-derives the session state and runs the gate for path.
func (m *Manager) Evaluate(ctx context.Context, sessionID, path string) (Outcome, State, error) {
	s, err := m.State(ctx, sessionID)
	if err != nil {
		return Outcome{}, s, err
	}
	return Decide(s, Classify(path)), s, nil
}

// Subscribe returns a channel receiving every state change and a function to
// stop receiving. A subscriber that falls behind by more than buffer events
// misses the excess.
func (m *Manager) Subscribe(buffer int) (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan Event, buffer)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
}

func (m *Manager) writeSession(ctx context.Context, sessionID string, id Identity, complete bool) (State, error) {
	s := State{
		SessionID:       sessionID,
		SignedIn:        true,
		ProfileComplete: complete,
		UserID:          id.UserID,
		UserName:        id.Name,
		UserEmail:       id.Email,
	}
	err := m.store.Save(ctx, sessionKey(sessionID), map[string]string{
		fieldSignedIn:       formatFlag(true),
		fieldPreferencesSet: formatFlag(complete),
		fieldUserID:         id.UserID,
		fieldUserName:       id.Name,
		fieldUserEmail:      id.Email,
	})
	if err != nil {
		return State{}, fmt.Errorf("save session: %w", err)
	}
	m.publish(s)
	return s, nil
}

// publish must be called with m.mu held.
func (m *Manager) publish(s State) {
	ev := Event{SessionID: s.SessionID, State: s}
	for id, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			m.log.Warn("dropping session event for slow subscriber",
				zap.Int("subscriber", id), zap.String("status", string(s.Status())))
		}
	}
}
