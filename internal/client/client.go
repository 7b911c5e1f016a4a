// Package client is the thin HTTP layer over the coaching REST API: one
// pre-configured request client with bearer-token attachment and 401
// handling, plus one method per backend operation. It performs no retries;
// a failed call is retried only by the user re-triggering the action.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"peakform/coaching-app/internal/domain"
)

// GenericFailureMessage is shown when the server did not supply a message.
const GenericFailureMessage = "Something went wrong. Please try again."

// ErrUnauthorized reports a transport 401. The session has already been
// cleared when this is returned.
var ErrUnauthorized = errors.New("unauthorized: session cleared")

// APIError is an application-level failure: the body statusCode was not 200,
// regardless of the transport status.
type APIError struct {
	StatusCode int
	Message    string
	ErrorCode  string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// HasErrorCode reports whether err is an APIError carrying the named domain
// error code.
func HasErrorCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == code
}

// envelope mirrors the server's response wrapper; Data decode is deferred so
// each call site can pick its own target type.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	ErrorCode  string          `json:"errorCode,omitempty"`
}

// Client is the pre-configured API client every service call goes through.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// New creates a client for the given base URL (".../api/v1") and session.
func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		session:    session,
	}
}

// Session exposes the client's session for login state checks.
func (c *Client) Session() *Session {
	return c.session
}

// do issues one request and decodes the envelope. out may be nil for calls
// whose data payload is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", GenericFailureMessage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Global 401 handling: the stored session is no longer valid.
		c.session.Clear()
		return ErrUnauthorized
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: %w", GenericFailureMessage, err)
	}

	// Transport status aside, a body statusCode other than 2xx is an
	// application failure.
	if env.StatusCode != http.StatusOK && env.StatusCode != http.StatusCreated {
		message := env.Message
		if message == "" {
			message = GenericFailureMessage
		}
		return &APIError{StatusCode: env.StatusCode, Message: message, ErrorCode: env.ErrorCode}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: %w", GenericFailureMessage, err)
		}
	}
	return nil
}

// --- Auth ---

type loginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// Login authenticates and stores the session.
func (c *Client) Login(ctx context.Context, email, password string) (*SessionUser, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.session.Set(resp.Token, &resp.User)
	return &resp.User, nil
}

// Logout discards the session. Nothing was persisted client-side beyond the
// session itself, so no compensating action is needed.
func (c *Client) Logout() {
	c.session.Clear()
}

// --- Readiness ---

// EvaluateInput is the profile subset the preview evaluation needs.
type EvaluateInput struct {
	TrainingExperience domain.TrainingExperience `json:"trainingExperience"`
	PrimaryGoal        string                    `json:"primaryGoal"`
	EventDate          string                    `json:"eventDate,omitempty"`
}

// EvaluateReadiness runs the repeatable, side-effect-free preview.
func (c *Client) EvaluateReadiness(ctx context.Context, input EvaluateInput) (*domain.ReadinessRecommendation, error) {
	var rec domain.ReadinessRecommendation
	if err := c.do(ctx, http.MethodPost, "/athlete/readiness/evaluate", input, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRecommendation fetches the stored recommendation for the pending
// attempt.
func (c *Client) GetRecommendation(ctx context.Context) (*domain.ReadinessRecommendation, error) {
	var rec domain.ReadinessRecommendation
	if err := c.do(ctx, http.MethodGet, "/athlete/readiness/recommendation", nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// --- Onboarding ---

// CreateOnboarding records the pending attempt from the full profile.
func (c *Client) CreateOnboarding(ctx context.Context, profile domain.OnboardingProfile) (*domain.Onboarding, error) {
	var onboarding domain.Onboarding
	if err := c.do(ctx, http.MethodPost, "/athlete/onboarding/create", profile, &onboarding); err != nil {
		return nil, err
	}
	return &onboarding, nil
}

type confirmTransitionRequest struct {
	CycleName domain.CycleName `json:"cycleName"`
	ProgramID string           `json:"programId,omitempty"`
}

// ConfirmCycleTransition performs the single persisting confirm.
func (c *Client) ConfirmCycleTransition(ctx context.Context, cycleName domain.CycleName, programID string) (*domain.Onboarding, error) {
	var onboarding domain.Onboarding
	err := c.do(ctx, http.MethodPost, "/athlete/cycle-transition/confirm", confirmTransitionRequest{
		CycleName: cycleName,
		ProgramID: programID,
	}, &onboarding)
	if err != nil {
		return nil, err
	}
	return &onboarding, nil
}

// CompleteOnboarding marks onboarding finished so the next dashboard fetch
// reports isOnboarded true.
func (c *Client) CompleteOnboarding(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/athlete/onboarding/complete", struct{}{}, nil)
}

// --- Roadmap ---

// GetRoadmap fetches the athlete's current roadmap.
func (c *Client) GetRoadmap(ctx context.Context) (*domain.Roadmap, error) {
	var roadmap domain.Roadmap
	if err := c.do(ctx, http.MethodGet, "/athlete/roadmap", nil, &roadmap); err != nil {
		return nil, err
	}
	return &roadmap, nil
}

// --- Goal types ---

type goalTypeRows struct {
	Rows []domain.GoalType `json:"rows"`
}

// GetGoalTypes fetches the goal taxonomy used to validate profile goals.
func (c *Client) GetGoalTypes(ctx context.Context, limit int64) ([]domain.GoalType, error) {
	var rows goalTypeRows
	err := c.do(ctx, http.MethodPost, "/shared/goalType/get-all", map[string]int64{"limit": limit}, &rows)
	if err != nil {
		return nil, err
	}
	return rows.Rows, nil
}
