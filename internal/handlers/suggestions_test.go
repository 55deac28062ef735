package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ROAMMATE_BACK-END/internal/dto"
	"ROAMMATE_BACK-END/internal/models"
	"ROAMMATE_BACK-END/internal/repository"
	"ROAMMATE_BACK-END/internal/suggestions"
)

type stubGenerator struct {
	got []suggestions.MemberProfile
	err error
}

func (g *stubGenerator) Generate(_ context.Context, members []suggestions.MemberProfile) (suggestions.Suggestions, error) {
	g.got = members
	if g.err != nil {
		return suggestions.Suggestions{}, g.err
	}
	if len(members) == 0 {
		return suggestions.Suggestions{}, suggestions.ErrNoMembers
	}
	return suggestions.Suggestions{
		IceBreakerMessages:  []string{"hi", "hello", "hey"},
		ActivitySuggestions: []string{"hike", "dine", "swim"},
	}, nil
}

func newSuggestionsFixture(t *testing.T, gen suggestions.Generator) *SuggestionsHandler {
	t.Helper()
	listings := repository.NewMemoryListingRepository(testCatalog())
	require.NoError(t, listings.AddPendingMember(context.Background(), "tokyo", "u1"))
	require.NoError(t, listings.AddPendingMember(context.Background(), "tokyo", "no-profile"))

	profiles := repository.NewMemoryProfileRepository()
	creator := models.NewEmptyProfile("creator-tokyo", "Kenji", "kenji@example.com", time.Now())
	creator.Interests = []string{"ramen", "temples"}
	creator.SmokingStance = models.SmokingStanceNon
	require.NoError(t, profiles.SaveProfile(context.Background(), creator))
	member := models.NewEmptyProfile("u1", "Ana", "ana@example.com", time.Now())
	member.TravelHistory = []string{"Peru", "Chile"}
	require.NoError(t, profiles.SaveProfile(context.Background(), member))

	return NewSuggestionsHandler(gen, listings, profiles, time.Second, nil, nil)
}

func postSuggestions(h *SuggestionsHandler, groupID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/api/groups/"+groupID+"/suggestions", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/api/groups/"+groupID+"/suggestions", strings.NewReader(body))
	}
	req.SetPathValue("groupId", groupID)
	rr := httptest.NewRecorder()
	h.Generate(rr, asUser(req, "u1", "Ana"))
	return rr
}

func TestSuggestionsFromStoredProfiles(t *testing.T) {
	gen := &stubGenerator{}
	h := newSuggestionsFixture(t, gen)

	rr := postSuggestions(h, "tokyo", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeBody[dto.SuggestionsResponse](t, rr)
	assert.Equal(t, "tokyo", resp.GroupID)
	assert.Len(t, resp.IceBreakerMessages, 3)
	assert.Len(t, resp.ActivitySuggestions, 3)

	require.Len(t, gen.got, 2, "members without a profile are skipped")
	assert.Equal(t, "ramen, temples", gen.got[0].Interests)
	assert.Equal(t, "non_smoker", gen.got[0].Preferences)
	assert.Equal(t, "Peru, Chile", gen.got[1].TravelHistory)
}

func TestSuggestionsFromBody(t *testing.T) {
	gen := &stubGenerator{}
	h := newSuggestionsFixture(t, gen)

	rr := postSuggestions(h, "bali", `{"memberProfiles":[{"interests":"surfing","travelHistory":"","preferences":"early riser"}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []suggestions.MemberProfile{{Interests: "surfing", Preferences: "early riser"}}, gen.got)
}

func TestSuggestionsErrors(t *testing.T) {
	t.Run("unknown group", func(t *testing.T) {
		h := newSuggestionsFixture(t, &stubGenerator{})
		rr := postSuggestions(h, "nope", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown group with body profiles", func(t *testing.T) {
		gen := &stubGenerator{}
		h := newSuggestionsFixture(t, gen)
		rr := postSuggestions(h, "nope", `{"memberProfiles":[{"interests":"hiking"}]}`)
		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "/groups", decodeBody[dto.ErrorResponse](t, rr).Redirect)
		assert.Nil(t, gen.got, "generator not called")
	})

	t.Run("no members", func(t *testing.T) {
		h := newSuggestionsFixture(t, &stubGenerator{})
		rr := postSuggestions(h, "full", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("generator failure", func(t *testing.T) {
		h := newSuggestionsFixture(t, &stubGenerator{err: errors.New("model overloaded")})
		rr := postSuggestions(h, "tokyo", "")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Equal(t, "Suggestion generation failed", decodeBody[dto.ErrorResponse](t, rr).Error)
	})

	t.Run("not configured", func(t *testing.T) {
		h := newSuggestionsFixture(t, nil)
		rr := postSuggestions(h, "tokyo", "")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("too many profiles", func(t *testing.T) {
		h := newSuggestionsFixture(t, &stubGenerator{})
		body := `{"memberProfiles":[` + strings.TrimSuffix(strings.Repeat(`{"interests":"x"},`, 21), ",") + `]}`
		rr := postSuggestions(h, "tokyo", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
