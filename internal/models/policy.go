package models

import (
	"errors"
	"fmt"
	"strings"
)

// Wildcard is the value every policy enumeration uses for "no constraint".
const Wildcard = "any"

// ErrInvalidEnum is returned when a policy or preference value is not one of its known options.
var ErrInvalidEnum = errors.New("invalid enumeration value")

// SmokingPolicy is a trip's stance on smoking.
type SmokingPolicy string

const (
	SmokingAny          SmokingPolicy = "any"
	SmokingPermitted    SmokingPolicy = "permitted"
	SmokingNotPermitted SmokingPolicy = "not_permitted"
	SmokingOutsideOnly  SmokingPolicy = "outside_only"
)

func (p SmokingPolicy) Valid() bool {
	switch p {
	case SmokingAny, SmokingPermitted, SmokingNotPermitted, SmokingOutsideOnly:
		return true
	}
	return false
}

// IsAny reports whether p imposes no constraint. An unset value counts as any.
func (p SmokingPolicy) IsAny() bool { return p == "" || p == SmokingAny }

// AlcoholPolicy is a trip's stance on drinking.
type AlcoholPolicy string

const (
	AlcoholAny          AlcoholPolicy = "any"
	AlcoholPermitted    AlcoholPolicy = "permitted"
	AlcoholNotPermitted AlcoholPolicy = "not_permitted"
	AlcoholSocially     AlcoholPolicy = "socially"
)

func (p AlcoholPolicy) Valid() bool {
	switch p {
	case AlcoholAny, AlcoholPermitted, AlcoholNotPermitted, AlcoholSocially:
		return true
	}
	return false
}

func (p AlcoholPolicy) IsAny() bool { return p == "" || p == AlcoholAny }

// GenderPreference is the gender mix a trip targets (or a user prefers).
type GenderPreference string

const (
	GenderAny       GenderPreference = "any"
	GenderMenOnly   GenderPreference = "men_only"
	GenderWomenOnly GenderPreference = "women_only"
	GenderMixed     GenderPreference = "mixed"
)

func (p GenderPreference) Valid() bool {
	switch p {
	case GenderAny, GenderMenOnly, GenderWomenOnly, GenderMixed:
		return true
	}
	return false
}

func (p GenderPreference) IsAny() bool { return p == "" || p == GenderAny }

// AgeGroup is the traveler age bracket a trip targets.
type AgeGroup string

const (
	AgeAny     AgeGroup = "any"
	Age18To25  AgeGroup = "18-25"
	Age26To35  AgeGroup = "26-35"
	Age36To45  AgeGroup = "36-45"
	Age45AndUp AgeGroup = "45+"
)

func (a AgeGroup) Valid() bool {
	switch a {
	case AgeAny, Age18To25, Age26To35, Age36To45, Age45AndUp:
		return true
	}
	return false
}

func (a AgeGroup) IsAny() bool { return a == "" || a == AgeAny }

// TravelerType is the kind of traveler a trip targets.
type TravelerType string

const (
	TravelerAny         TravelerType = "any"
	TravelerSingles     TravelerType = "singles"
	TravelerCouples     TravelerType = "couples"
	TravelerFamily      TravelerType = "family"
	TravelerFriends     TravelerType = "friends"
	TravelerBackpackers TravelerType = "backpackers"
	TravelerAdventure   TravelerType = "adventure"
	TravelerLuxury      TravelerType = "luxury"
)

func (t TravelerType) Valid() bool {
	switch t {
	case TravelerAny, TravelerSingles, TravelerCouples, TravelerFamily,
		TravelerFriends, TravelerBackpackers, TravelerAdventure, TravelerLuxury:
		return true
	}
	return false
}

func (t TravelerType) IsAny() bool { return t == "" || t == TravelerAny }

// SmokingStance is a user's own smoking habit, as opposed to a trip's policy.
type SmokingStance string

const (
	SmokingStanceAny      SmokingStance = "any"
	SmokingStanceNon      SmokingStance = "non_smoker"
	SmokingStanceFriendly SmokingStance = "smoker_friendly"
	SmokingStanceFlexible SmokingStance = "flexible_smoking"
)

func (s SmokingStance) Valid() bool {
	switch s {
	case SmokingStanceAny, SmokingStanceNon, SmokingStanceFriendly, SmokingStanceFlexible:
		return true
	}
	return false
}

func (s SmokingStance) IsAny() bool { return s == "" || s == SmokingStanceAny }

// AlcoholStance is a user's own drinking habit.
type AlcoholStance string

const (
	AlcoholStanceAny    AlcoholStance = "any"
	AlcoholStanceDry    AlcoholStance = "dry_trip"
	AlcoholStanceSocial AlcoholStance = "social_drinker"
	AlcoholStanceParty  AlcoholStance = "party_friendly"
)

func (s AlcoholStance) Valid() bool {
	switch s {
	case AlcoholStanceAny, AlcoholStanceDry, AlcoholStanceSocial, AlcoholStanceParty:
		return true
	}
	return false
}

func (s AlcoholStance) IsAny() bool { return s == "" || s == AlcoholStanceAny }

// Enum is implemented by every closed enumeration above.
type Enum interface {
	~string
	Valid() bool
	IsAny() bool
}

// ParseEnum normalises raw (trimmed, lower-cased) and checks it against T's options.
// An empty string parses to the wildcard.
func ParseEnum[T Enum](field, raw string) (T, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return T(Wildcard), nil
	}
	out := T(v)
	if !out.Valid() {
		return out, fmt.Errorf("%w: %s %q", ErrInvalidEnum, field, raw)
	}
	return out, nil
}
