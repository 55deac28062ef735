package dto

// SessionResponse mirrors the session flags the frontend keys its navigation on
type SessionResponse struct {
	IsUserSignedIn            bool   `json:"isUserSignedIn"`
	UserProfilePreferencesSet bool   `json:"userProfilePreferencesSet"`
	Status                    string `json:"status"`
	UserID                    string `json:"userId,omitempty"`
	UserName                  string `json:"userName,omitempty"`
	UserEmail                 string `json:"userEmail,omitempty"`
}

// GateResponse is the navigation decision for one frontend route
type GateResponse struct {
	Route     string          `json:"route"`
	RouteKind string          `json:"routeKind"`
	Decision  string          `json:"decision"`
	Redirect  string          `json:"redirect,omitempty"`
	ForceEdit bool            `json:"forceEdit"`
	Session   SessionResponse `json:"session"`
}
