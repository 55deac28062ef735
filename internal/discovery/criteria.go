package discovery

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"ROAMMATE_BACK-END/internal/models"
)

// ErrInvalidCriteria is returned by ParseCriteria for malformed query values.
var ErrInvalidCriteria = errors.New("invalid filter criteria")

// Default group-size bounds used when a request does not narrow them.
const (
	DefaultGroupSizeMin = 2
	DefaultGroupSizeMax = 20
)

// View selects which predicates apply. The groups view has no category or search box.
type View int

const (
	ViewDiscover View = iota
	ViewGroups
)

func (v View) String() string {
	if v == ViewGroups {
		return "groups"
	}
	return "discover"
}

// Range is a closed integer interval. Min > Max is allowed and matches nothing.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r Range) Contains(n int) bool { return r.Min <= n && n <= r.Max }

// Criteria is the set of filter selections applied to a catalog.
type Criteria struct {
	View          View
	Destination   string
	StartLocation string
	// Interests and Budget are accepted and echoed back but do not narrow results.
	Interests string
	Budget    string
	Category  string
	Search    string
	GroupSize Range
	// GroupSizeSet records that the request supplied a bound explicitly,
	// even one equal to the default.
	GroupSizeSet     bool
	SmokingPolicy    models.SmokingPolicy
	AlcoholPolicy    models.AlcoholPolicy
	GenderPreference models.GenderPreference
	AgeGroup         models.AgeGroup
	TravelerType     models.TravelerType
}

// DefaultCriteria returns criteria that pass every listing.
func DefaultCriteria() Criteria {
	return Criteria{
		GroupSize:        Range{Min: DefaultGroupSizeMin, Max: DefaultGroupSizeMax},
		SmokingPolicy:    models.SmokingAny,
		AlcoholPolicy:    models.AlcoholAny,
		GenderPreference: models.GenderAny,
		AgeGroup:         models.AgeAny,
		TravelerType:     models.TravelerAny,
	}
}

// ForGroups returns a copy of c for the groups view.
func (c Criteria) ForGroups() Criteria {
	c.View = ViewGroups
	return c
}

// groupSizeActive reports whether the group-size range was supplied or narrowed
// from its default.
func (c Criteria) groupSizeActive() bool {
	return c.GroupSizeSet || c.GroupSize != Range{Min: DefaultGroupSizeMin, Max: DefaultGroupSizeMax}
}

// ParseCriteria builds criteria from URL query parameters, starting from DefaultCriteria.
func ParseCriteria(q url.Values) (Criteria, error) {
	c := DefaultCriteria()
	c.Destination = strings.TrimSpace(q.Get("destination"))
	c.StartLocation = strings.TrimSpace(q.Get("startLocation"))
	c.Interests = strings.TrimSpace(q.Get("interests"))
	c.Budget = strings.TrimSpace(q.Get("budget"))
	c.Category = strings.TrimSpace(q.Get("category"))
	if strings.EqualFold(c.Category, models.Wildcard) {
		c.Category = ""
	}
	c.Search = strings.TrimSpace(q.Get("search"))

	var err error
	if c.GroupSize.Min, err = intParam(q, "groupSizeMin", DefaultGroupSizeMin); err != nil {
		return c, err
	}
	if c.GroupSize.Max, err = intParam(q, "groupSizeMax", DefaultGroupSizeMax); err != nil {
		return c, err
	}
	c.GroupSizeSet = strings.TrimSpace(q.Get("groupSizeMin")) != "" || strings.TrimSpace(q.Get("groupSizeMax")) != ""

	if c.SmokingPolicy, err = enumParam[models.SmokingPolicy](q, "smokingPolicy"); err != nil {
		return c, err
	}
	if c.AlcoholPolicy, err = enumParam[models.AlcoholPolicy](q, "alcoholPolicy"); err != nil {
		return c, err
	}
	if c.GenderPreference, err = enumParam[models.GenderPreference](q, "genderPreference"); err != nil {
		return c, err
	}
	if c.AgeGroup, err = enumParam[models.AgeGroup](q, "ageGroup"); err != nil {
		return c, err
	}
	if c.TravelerType, err = enumParam[models.TravelerType](q, "travelerType"); err != nil {
		return c, err
	}
	return c, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def, fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidCriteria, key)
	}
	return n, nil
}

func enumParam[T models.Enum](q url.Values, key string) (T, error) {
	v, err := models.ParseEnum[T](key, q.Get(key))
	if err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidCriteria, err)
	}
	return v, nil
}
