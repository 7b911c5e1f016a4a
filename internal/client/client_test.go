package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"peakform/coaching-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envelopeHandler wraps a payload in the server's response envelope.
func envelopeHandler(t *testing.T, statusCode int, data interface{}, message, errorCode string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"statusCode": statusCode}
		if data != nil {
			body["data"] = data
		}
		if message != "" {
			body["message"] = message
		}
		if errorCode != "" {
			body["errorCode"] = errorCode
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}
}

func TestLoginStoresSessionAndAttachesBearer(t *testing.T) {
	t.Parallel()

	var seenAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", envelopeHandler(t, http.StatusOK, map[string]interface{}{
		"token": "jwt-token",
		"user":  map[string]interface{}{"id": "u1", "email": "a@example.com", "role": "athlete"},
	}, "", ""))
	mux.HandleFunc("/api/v1/athlete/roadmap", func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		envelopeHandler(t, http.StatusOK, map[string]interface{}{"totalWeeks": 12}, "", "")(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session := NewSession(nil)
	c := New(srv.URL+"/api/v1", session)

	user, err := c.Login(context.Background(), "a@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
	assert.True(t, session.Authenticated())

	_, err = c.GetRoadmap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt-token", seenAuth)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	session := NewSession(nil)
	session.Set("stale-token", &SessionUser{Email: "a@example.com"})
	c := New(srv.URL, session)

	_, err := c.GetRoadmap(context.Background())

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, session.Authenticated())
	assert.Nil(t, session.User())
}

func TestBodyStatusCodeFailureOnTransport200(t *testing.T) {
	t.Parallel()

	// The server reports some application failures inside a transport-200
	// response; the body statusCode is authoritative.
	srv := httptest.NewServer(envelopeHandler(t, http.StatusNotFound, nil,
		"No roadmap found. Please complete confirmation step.", ""))
	defer srv.Close()

	c := New(srv.URL, NewSession(nil))

	_, err := c.GetRoadmap(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "No roadmap found. Please complete confirmation step.", apiErr.Message,
		"server messages pass through verbatim")
}

func TestErrorCodeSurfaces(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(envelopeHandler(t, http.StatusConflict, nil,
		"Athlete already onboarded", "AlreadyOnboarded"))
	defer srv.Close()

	c := New(srv.URL, NewSession(nil))

	_, err := c.ConfirmCycleTransition(context.Background(), domain.CycleGreen, "")

	assert.True(t, HasErrorCode(err, "AlreadyOnboarded"))
	assert.False(t, HasErrorCode(err, "SomethingElse"))
}

func TestMissingMessageFallsBackToGeneric(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(envelopeHandler(t, http.StatusInternalServerError, nil, "", ""))
	defer srv.Close()

	c := New(srv.URL, NewSession(nil))

	_, err := c.GetRecommendation(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, GenericFailureMessage, apiErr.Message)
}

func TestGetRoadmapDecodesMixedTimeline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(envelopeHandler(t, http.StatusOK, map[string]interface{}{
		"primaryGoal":  "Strength",
		"totalWeeks":   12,
		"currentCycle": "Green",
		"timeline": map[string]interface{}{
			"green": map[string]interface{}{
				"week1": []map[string]interface{}{{"dayLabel": "Day 1"}},
			},
			"red": map[string]interface{}{
				"week1": []string{"Day 1: Rest"},
				"week2": map[string]interface{}{"dayLabel": "Taper"},
			},
		},
	}, "", ""))
	defer srv.Close()

	c := New(srv.URL, NewSession(nil))

	roadmap, err := c.GetRoadmap(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ShapeDayList, roadmap.Timeline["green"]["week1"].Shape())
	assert.Equal(t, domain.ShapeLegacyNotes, roadmap.Timeline["red"]["week1"].Shape())
	assert.Equal(t, domain.ShapeSingleDay, roadmap.Timeline["red"]["week2"].Shape())
}

func TestGetGoalTypesUnwrapsRows(t *testing.T) {
	t.Parallel()

	var gotBody map[string]int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		envelopeHandler(t, http.StatusOK, map[string]interface{}{
			"rows": []map[string]interface{}{{"category": "Strength"}, {"category": "Mobility"}},
		}, "", "")(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL, NewSession(nil))

	goalTypes, err := c.GetGoalTypes(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, int64(100), gotBody["limit"])
	require.Len(t, goalTypes, 2)
	assert.Equal(t, "Strength", goalTypes[0].Category)
}

func TestFileSessionStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileSessionStore(path)

	first := NewSession(store)
	first.Set("jwt-token", &SessionUser{ID: "u1", Email: "a@example.com"})

	// A new session against the same store restores the login.
	second := NewSession(store)
	assert.True(t, second.Authenticated())
	assert.Equal(t, "jwt-token", second.Token())
	require.NotNil(t, second.User())
	assert.Equal(t, "a@example.com", second.User().Email)

	second.Clear()
	third := NewSession(store)
	assert.False(t, third.Authenticated())
}
