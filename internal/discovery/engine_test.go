package discovery

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ROAMMATE_BACK-END/internal/models"
)

func sampleCatalog() []models.Listing {
	return []models.Listing{
		{ID: "1", Title: "Bali Beach Escape", Destination: "Bali, Indonesia", StartLocation: "Singapore",
			Categories: []string{"Beach", "Adventure", "Cultural"}, MaxGroupSize: 6,
			SmokingPolicy: models.SmokingNotPermitted, AlcoholPolicy: models.AlcoholPermitted},
		{ID: "2", Title: "Tokyo Lights", Destination: "Tokyo, Japan",
			Categories: []string{"City Break", "Cultural"}, MaxGroupSize: 4,
			SmokingPolicy: models.SmokingAny, GenderPreference: models.GenderMixed},
		{ID: "3", Title: "Paris Food Walk", Destination: "Paris, France", StartLocation: "London",
			Categories: []string{"Foodie", "City Break"}, MaxGroupSize: 8,
			SmokingPolicy: models.SmokingOutsideOnly, TargetAgeGroup: models.Age26To35},
		{ID: "4", Title: "Swiss Alps Trek", Destination: "Interlaken, Switzerland",
			Categories: []string{"Mountains", "Adventure"}, MaxGroupSize: 12,
			TargetTravelerType: models.TravelerBackpackers},
		{ID: "5", Title: "Kyoto Temples", Destination: "Kyoto, Japan",
			Categories: []string{"Cultural", "Historical"}, MaxGroupSize: 10,
			SmokingPolicy: models.SmokingPermitted},
	}
}

func ids(ls []models.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func TestApplyFilters_DefaultCriteriaIsIdentity(t *testing.T) {
	catalog := sampleCatalog()
	got := ApplyFilters(catalog, DefaultCriteria())
	if diff := cmp.Diff(catalog, got); diff != "" {
		t.Fatalf("default criteria changed the catalog (-want +got):\n%s", diff)
	}

	got = ApplyFilters(catalog, DefaultCriteria().ForGroups())
	if diff := cmp.Diff(catalog, got); diff != "" {
		t.Fatalf("default groups criteria changed the catalog (-want +got):\n%s", diff)
	}
}

func TestApplyFilters_EmptyCatalog(t *testing.T) {
	c := DefaultCriteria()
	c.Destination = "bali"

	got := ApplyFilters(nil, c)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyFilters_Destination(t *testing.T) {
	catalog := []models.Listing{
		{ID: "a", Destination: "Bali, Indonesia"},
		{ID: "b", Destination: "Tokyo, Japan"},
	}
	for _, term := range []string{"bali", "Bali", "BALI", "ali, indo"} {
		c := DefaultCriteria()
		c.Destination = term
		assert.Equal(t, []string{"a"}, ids(ApplyFilters(catalog, c)), term)
	}
}

func TestApplyFilters_StartLocation(t *testing.T) {
	c := DefaultCriteria()
	c.StartLocation = "lon"
	assert.Equal(t, []string{"3"}, ids(ApplyFilters(sampleCatalog(), c)))
}

func TestApplyFilters_Category(t *testing.T) {
	c := DefaultCriteria()
	c.Category = "Cultural"
	assert.Equal(t, []string{"1", "2", "5"}, ids(ApplyFilters(sampleCatalog(), c)))

	// nil categories never match a selected category
	assert.Empty(t, ApplyFilters([]models.Listing{{ID: "x"}}, c))

	// the groups view has no category filter
	assert.Len(t, ApplyFilters(sampleCatalog(), c.ForGroups()), 5)
}

func TestApplyFilters_Search(t *testing.T) {
	c := DefaultCriteria()
	c.Search = "japan"
	assert.Equal(t, []string{"2", "5"}, ids(ApplyFilters(sampleCatalog(), c)))

	c.Search = "temples"
	assert.Equal(t, []string{"5"}, ids(ApplyFilters(sampleCatalog(), c)))

	assert.Len(t, ApplyFilters(sampleCatalog(), c.ForGroups()), 5)
}

func TestApplyFilters_SmokingWildcard(t *testing.T) {
	c := DefaultCriteria()
	c.SmokingPolicy = models.SmokingNotPermitted

	// 1 matches exactly, 2 is "any", 4 is unset; 3 and 5 are set and differ
	assert.Equal(t, []string{"1", "2", "4"}, ids(ApplyFilters(sampleCatalog(), c)))

	c.SmokingPolicy = models.SmokingAny
	assert.Len(t, ApplyFilters(sampleCatalog(), c), 5)
}

func TestApplyFilters_UnsetPolicyIsWildcard(t *testing.T) {
	unset := models.Listing{ID: "unset"}
	mismatched := models.Listing{
		ID:                 "set",
		AlcoholPolicy:      models.AlcoholNotPermitted,
		GenderPreference:   models.GenderWomenOnly,
		TargetAgeGroup:     models.Age45AndUp,
		TargetTravelerType: models.TravelerFamily,
	}

	c := DefaultCriteria()
	c.AlcoholPolicy = models.AlcoholPermitted
	c.GenderPreference = models.GenderMenOnly
	c.AgeGroup = models.Age18To25
	c.TravelerType = models.TravelerSingles

	assert.Equal(t, []string{"unset"}, ids(ApplyFilters([]models.Listing{unset, mismatched}, c)))
}

func TestApplyFilters_GroupSize(t *testing.T) {
	six := []models.Listing{{ID: "six", MaxGroupSize: 6}}

	c := DefaultCriteria()
	c.GroupSize = Range{Min: 2, Max: 10}
	assert.Len(t, ApplyFilters(six, c), 1)

	c.GroupSize = Range{Min: 7, Max: 10}
	assert.Empty(t, ApplyFilters(six, c))

	c.GroupSize = Range{Min: 10, Max: 2}
	assert.Empty(t, ApplyFilters(sampleCatalog(), c))
}

func TestApplyFilters_ExplicitDefaultGroupSize(t *testing.T) {
	large := []models.Listing{{ID: "small", MaxGroupSize: 8}, {ID: "large", MaxGroupSize: 25}}

	c, err := ParseCriteria(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, []string{"small", "large"}, ids(ApplyFilters(large, c)), "no bound supplied")

	c, err = ParseCriteria(url.Values{"groupSizeMin": {"2"}, "groupSizeMax": {"20"}})
	require.NoError(t, err)
	assert.True(t, c.GroupSizeSet)
	assert.Equal(t, []string{"small"}, ids(ApplyFilters(large, c)))

	c, err = ParseCriteria(url.Values{"groupSizeMax": {"20"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"small"}, ids(ApplyFilters(large, c)))
}

func TestApplyFilters_CombinedAndIdempotent(t *testing.T) {
	catalog := sampleCatalog()
	snapshot := sampleCatalog()

	c := DefaultCriteria()
	c.Category = "Cultural"
	c.Destination = "japan"
	c.GroupSize = Range{Min: 5, Max: 12}

	first := ApplyFilters(catalog, c)
	second := ApplyFilters(catalog, c)
	assert.Equal(t, []string{"5"}, ids(first))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second run differs:\n%s", diff)
	}
	if diff := cmp.Diff(snapshot, catalog); diff != "" {
		t.Fatalf("catalog was mutated:\n%s", diff)
	}
}

func TestMatches(t *testing.T) {
	c := DefaultCriteria()
	c.TravelerType = models.TravelerBackpackers
	assert.True(t, Matches(sampleCatalog()[3], c))
	assert.True(t, Matches(sampleCatalog()[0], c))
}

func TestParseCriteria(t *testing.T) {
	q := url.Values{}
	q.Set("destination", " Bali ")
	q.Set("category", "any")
	q.Set("groupSizeMin", "3")
	q.Set("groupSizeMax", "8")
	q.Set("smokingPolicy", "NOT_PERMITTED")
	q.Set("ageGroup", "26-35")
	q.Set("budget", "<1000")

	c, err := ParseCriteria(q)
	require.NoError(t, err)
	assert.Equal(t, "Bali", c.Destination)
	assert.Empty(t, c.Category)
	assert.Equal(t, Range{Min: 3, Max: 8}, c.GroupSize)
	assert.Equal(t, models.SmokingNotPermitted, c.SmokingPolicy)
	assert.Equal(t, models.AlcoholAny, c.AlcoholPolicy)
	assert.Equal(t, models.Age26To35, c.AgeGroup)
	assert.Equal(t, "<1000", c.Budget)
	assert.Equal(t, ViewDiscover, c.View)

	empty, err := ParseCriteria(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, DefaultCriteria(), empty)
}

func TestParseCriteria_Invalid(t *testing.T) {
	cases := map[string]url.Values{
		"bad int":      {"groupSizeMin": {"two"}},
		"negative":     {"groupSizeMax": {"-1"}},
		"bad smoking":  {"smokingPolicy": {"sometimes"}},
		"bad traveler": {"travelerType": {"pilgrims"}},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCriteria(q)
			assert.ErrorIs(t, err, ErrInvalidCriteria)
		})
	}
}
