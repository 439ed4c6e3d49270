// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serbbisyo/serbbisyo/internal/identity"
	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/constants"
	"github.com/serbbisyo/serbbisyo/internal/platform/ctxutil"
	"github.com/serbbisyo/serbbisyo/internal/platform/respond"
	"github.com/serbbisyo/serbbisyo/internal/platform/sec"
	"github.com/serbbisyo/serbbisyo/internal/profile"
)

// # Fakes

type fakeIdentity struct {
	accounts  map[string]string // email -> password
	revoked   []string
	signInErr error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: map[string]string{}}
}

func (f *fakeIdentity) login(email string) *identity.Login {
	return &identity.Login{
		UserID:    "user-" + email,
		SessionID: "session-" + email,
		Token:     "token-" + email,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, password string) (*identity.Login, error) {
	email = identity.NormalizeEmail(email)
	if _, ok := f.accounts[email]; ok {
		return nil, apperr.Conflict("Email is already registered")
	}
	f.accounts[email] = password
	return f.login(email), nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*identity.Login, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	email = identity.NormalizeEmail(email)
	if stored, ok := f.accounts[email]; !ok || stored != password {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	return f.login(email), nil
}

func (f *fakeIdentity) SignOut(_ context.Context, sessionID string) error {
	f.revoked = append(f.revoked, sessionID)
	return nil
}

func (f *fakeIdentity) DeleteAccount(_ context.Context, userID string) error {
	for email := range f.accounts {
		if f.login(email).UserID == userID {
			delete(f.accounts, email)
		}
	}
	return nil
}

type fakeProfiles struct {
	byUser    map[string]*profile.Profile
	createErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byUser: map[string]*profile.Profile{}}
}

func (f *fakeProfiles) Create(_ context.Context, input profile.CreateInput) (*profile.Profile, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	role := input.Role
	if role == "" {
		role = profile.DefaultRole
	}
	created := &profile.Profile{
		UserID:    input.UserID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	f.byUser[input.UserID] = created
	return created, nil
}

func (f *fakeProfiles) Get(_ context.Context, userID string) (*profile.Profile, error) {
	found, ok := f.byUser[userID]
	if !ok {
		return nil, apperr.ProfileNotFound()
	}
	return found, nil
}

func newTestHandler() (*Handler, *fakeIdentity, *fakeProfiles) {
	ids := newFakeIdentity()
	profiles := newFakeProfiles()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewHandler(NewService(ids, profiles, logger), false), ids, profiles
}

func post(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func sessionCookie(recorder *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName {
			return cookie
		}
	}
	return nil
}

type sessionEnvelope struct {
	Data struct {
		Profile  profile.Profile `json:"profile"`
		Redirect string          `json:"redirect"`
	} `json:"data"`
}

const validSignup = `{"email":"Ana@Example.ph","password":"secret1","confirmPassword":"secret1","firstName":"Ana","lastName":"Santos","role":"provider"}`

// # Signup

/*
TestSignup creates the profile, sets the cookie and lands on the index page.
*/
func TestSignup(t *testing.T) {
	handler, _, profiles := newTestHandler()

	recorder := post(t, handler.Routes(), "/signup", validSignup)

	require.Equal(t, http.StatusCreated, recorder.Code)
	var envelope sessionEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, constants.PageIndex, envelope.Data.Redirect)
	assert.Equal(t, profile.RoleProvider, envelope.Data.Profile.Role)
	assert.Equal(t, "ana@example.ph", envelope.Data.Profile.Email)

	cookie := sessionCookie(recorder)
	require.NotNil(t, cookie)
	assert.Equal(t, "token-ana@example.ph", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	assert.Contains(t, profiles.byUser, "user-ana@example.ph")
}

/*
TestSignup_DefaultRole stores client when no role is chosen.
*/
func TestSignup_DefaultRole(t *testing.T) {
	handler, _, profiles := newTestHandler()

	recorder := post(t, handler.Routes(), "/signup",
		`{"email":"ben@example.ph","password":"secret1","confirmPassword":"secret1","firstName":"Ben","lastName":"Cruz"}`)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, profile.RoleClient, profiles.byUser["user-ben@example.ph"].Role)
}

/*
TestSignup_Validation covers each rejected field.
*/
func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing_email", `{"password":"secret1","confirmPassword":"secret1","firstName":"A","lastName":"B"}`, identity.FieldEmail},
		{"bad_email", `{"email":"nope","password":"secret1","confirmPassword":"secret1","firstName":"A","lastName":"B"}`, identity.FieldEmail},
		{"short_password", `{"email":"a@b.ph","password":"12345","confirmPassword":"12345","firstName":"A","lastName":"B"}`, identity.FieldPassword},
		{"mismatch", `{"email":"a@b.ph","password":"secret1","confirmPassword":"secret2","firstName":"A","lastName":"B"}`, identity.FieldConfirmPassword},
		{"long_name", `{"email":"a@b.ph","password":"secret1","confirmPassword":"secret1","firstName":"` + strings.Repeat("a", 51) + `","lastName":"B"}`, profile.FieldFirstName},
		{"missing_last_name", `{"email":"a@b.ph","password":"secret1","confirmPassword":"secret1","firstName":"A"}`, profile.FieldLastName},
		{"bad_role", `{"email":"a@b.ph","password":"secret1","confirmPassword":"secret1","firstName":"A","lastName":"B","role":"admin"}`, profile.FieldRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, ids, _ := newTestHandler()

			recorder := post(t, handler.Routes(), "/signup", tt.body)

			require.Equal(t, http.StatusBadRequest, recorder.Code)
			var envelope respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, "VALIDATION_FAILED", envelope.Code)
			fields := make([]string, 0, len(envelope.Details))
			for _, d := range envelope.Details {
				fields = append(fields, d.Field)
			}
			assert.Contains(t, fields, tt.field)
			assert.Empty(t, ids.accounts)
		})
	}
}

/*
TestSignup_PasswordMismatchMessage uses the form's wording.
*/
func TestSignup_PasswordMismatchMessage(t *testing.T) {
	handler, _, _ := newTestHandler()

	recorder := post(t, handler.Routes(), "/signup",
		`{"email":"a@b.ph","password":"secret1","confirmPassword":"secret2","firstName":"A","lastName":"B"}`)

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Len(t, envelope.Details, 1)
	assert.Equal(t, "Passwords do not match", envelope.Details[0].Message)
}

/*
TestSignup_DuplicateEmail answers 409.
*/
func TestSignup_DuplicateEmail(t *testing.T) {
	handler, _, _ := newTestHandler()
	routes := handler.Routes()

	require.Equal(t, http.StatusCreated, post(t, routes, "/signup", validSignup).Code)
	recorder := post(t, routes, "/signup", validSignup)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Nil(t, sessionCookie(recorder))
}

/*
TestSignup_ProfileFailureRevokesSession leaves no usable login behind.
*/
func TestSignup_ProfileFailureRevokesSession(t *testing.T) {
	handler, ids, profiles := newTestHandler()
	profiles.createErr = errors.New("connection reset")

	recorder := post(t, handler.Routes(), "/signup", validSignup)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, []string{"session-ana@example.ph"}, ids.revoked)
	assert.Nil(t, sessionCookie(recorder))
	assert.NotContains(t, ids.accounts, "ana@example.ph")

	// The email is free again once the profile store recovers.
	profiles.createErr = nil
	retry := post(t, handler.Routes(), "/signup", validSignup)
	assert.Equal(t, http.StatusCreated, retry.Code)
}

// # Login

/*
TestLogin redirects each role to its dashboard.
*/
func TestLogin(t *testing.T) {
	tests := []struct {
		role profile.Role
		want string
	}{
		{profile.RoleClient, constants.PageClientDashboard},
		{profile.RoleProvider, constants.PageProviderDashboard},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			handler, ids, profiles := newTestHandler()
			ids.accounts["ana@example.ph"] = "secret1"
			profiles.byUser["user-ana@example.ph"] = &profile.Profile{UserID: "user-ana@example.ph", Role: tt.role}

			recorder := post(t, handler.Routes(), "/login", `{"email":"ana@example.ph","password":"secret1"}`)

			require.Equal(t, http.StatusOK, recorder.Code)
			var envelope sessionEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, tt.want, envelope.Data.Redirect)
			assert.NotNil(t, sessionCookie(recorder))
		})
	}
}

/*
TestLogin_Failures covers bad credentials, missing fields and a missing profile.
*/
func TestLogin_Failures(t *testing.T) {
	handler, ids, _ := newTestHandler()
	ids.accounts["ana@example.ph"] = "secret1"
	routes := handler.Routes()

	assert.Equal(t, http.StatusUnauthorized, post(t, routes, "/login", `{"email":"ana@example.ph","password":"wrong"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, routes, "/login", `{"email":"ana@example.ph"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, routes, "/login", `{`).Code)

	recorder := post(t, routes, "/login", `{"email":"ana@example.ph","password":"secret1"}`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, []string{"session-ana@example.ph"}, ids.revoked)
}

// # Authenticated Routes

func authenticated(request *http.Request, userID, sessionID string) *http.Request {
	ctx := ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: userID, SessionID: sessionID})
	return request.WithContext(ctx)
}

/*
TestLogout revokes the session and clears the cookie.
*/
func TestLogout(t *testing.T) {
	handler, ids, _ := newTestHandler()
	routes := handler.Routes()

	anonymous := httptest.NewRecorder()
	routes.ServeHTTP(anonymous, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	recorder := httptest.NewRecorder()
	routes.ServeHTTP(recorder, authenticated(httptest.NewRequest(http.MethodPost, "/logout", nil), "u-1", "s-1"))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"redirect":"/login.html"}}`, recorder.Body.String())
	assert.Equal(t, []string{"s-1"}, ids.revoked)
	cookie := sessionCookie(recorder)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
}

/*
TestMe returns the caller's profile.
*/
func TestMe(t *testing.T) {
	handler, _, profiles := newTestHandler()
	profiles.byUser["u-1"] = &profile.Profile{UserID: "u-1", FirstName: "Ana", Role: profile.RoleClient}
	routes := handler.Routes()

	recorder := httptest.NewRecorder()
	routes.ServeHTTP(recorder, authenticated(httptest.NewRequest(http.MethodGet, "/me", nil), "u-1", "s-1"))

	require.Equal(t, http.StatusOK, recorder.Code)
	var envelope struct {
		Data profile.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "Ana", envelope.Data.FirstName)

	missing := httptest.NewRecorder()
	routes.ServeHTTP(missing, authenticated(httptest.NewRequest(http.MethodGet, "/me", nil), "u-2", "s-2"))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}
