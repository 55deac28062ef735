package access

import "strconv"

// Status is the gate's state, derived from the two session flags.
type Status string

const (
	SignedOut          Status = "signedOut"
	SignedInIncomplete Status = "signedInIncomplete"
	SignedInComplete   Status = "signedInComplete"
)

// State is a snapshot of one session.
type State struct {
	SessionID       string `json:"-"`
	SignedIn        bool   `json:"isUserSignedIn"`
	ProfileComplete bool   `json:"userProfilePreferencesSet"`
	UserID          string `json:"userId,omitempty"`
	UserName        string `json:"userName,omitempty"`
	UserEmail       string `json:"userEmail,omitempty"`
}

func (s State) Status() Status {
	switch {
	case !s.SignedIn:
		return SignedOut
	case s.ProfileComplete:
		return SignedInComplete
	default:
		return SignedInIncomplete
	}
}

// Flag names kept in the session hash.
const (
	fieldSignedIn       = "isUserSignedIn"
	fieldPreferencesSet = "userProfilePreferencesSet"
	fieldUserName       = "userName"
	fieldUserEmail      = "userEmail"
	fieldUserID         = "userId"
	fieldProfile        = "userProfile"
)

func sessionKey(sessionID string) string { return "session:" + sessionID }
func userKey(userID string) string       { return "user:" + userID }

func stateFromFields(sessionID string, f map[string]string) State {
	return State{
		SessionID:       sessionID,
		SignedIn:        parseFlag(f[fieldSignedIn]),
		ProfileComplete: parseFlag(f[fieldPreferencesSet]),
		UserID:          f[fieldUserID],
		UserName:        f[fieldUserName],
		UserEmail:       f[fieldUserEmail],
	}
}

func parseFlag(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func formatFlag(b bool) string { return strconv.FormatBool(b) }
