// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/serbbisyo/serbbisyo/internal/identity"
	"github.com/serbbisyo/serbbisyo/internal/platform/constants"
	"github.com/serbbisyo/serbbisyo/internal/platform/middleware"
	requestutil "github.com/serbbisyo/serbbisyo/internal/platform/request"
	"github.com/serbbisyo/serbbisyo/internal/platform/respond"
	"github.com/serbbisyo/serbbisyo/internal/platform/validate"
	"github.com/serbbisyo/serbbisyo/internal/profile"
)

// # Definitions & Constructors

// Handler implements the account HTTP endpoints.
type Handler struct {
	accountService *Service
	secureCookie   bool
}

// NewHandler constructs a new [Handler]. secureCookie marks the session
// cookie Secure and should be true outside local development.
func NewHandler(service *Service, secureCookie bool) *Handler {
	return &Handler{accountService: service, secureCookie: secureCookie}
}

// Routes returns a [chi.Router] configured with the account routes.
//
// # Endpoints
//   - POST /signup : Creates an account and its profile.
//   - POST /login  : Opens a session.
//   - POST /logout : Revokes the current session.
//   - GET  /me     : Returns the caller's profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type signupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Role            string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// # Response Payloads

type sessionResponse struct {
	Profile  *profile.Profile `json:"profile"`
	Redirect string           `json:"redirect"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

const (
	maxNameLength     = 50
	minPasswordLength = 6
)

/*
POST /auth/signup.

Description: Creates credentials and the profile document, then signs the
new user in.

Request:
  - Body: signupRequest

Response:
  - 201: sessionResponse: Profile and "/index.html" as redirect
  - 400: VALIDATION_FAILED: Bad input
  - 409: CONFLICT: Email already registered
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	role := profile.Role(input.Role)
	if role == "" {
		role = profile.DefaultRole
	}

	validator := &validate.Validator{}
	validator.Required(identity.FieldEmail, input.Email).
		Email(identity.FieldEmail, input.Email).
		Required(identity.FieldPassword, input.Password).
		MinLen(identity.FieldPassword, input.Password, minPasswordLength).
		Required(identity.FieldConfirmPassword, input.ConfirmPassword).
		Custom(identity.FieldConfirmPassword, input.Password != input.ConfirmPassword, "Passwords do not match").
		Required(profile.FieldFirstName, input.FirstName).
		MaxLen(profile.FieldFirstName, input.FirstName, maxNameLength).
		Required(profile.FieldLastName, input.LastName).
		MaxLen(profile.FieldLastName, input.LastName, maxNameLength).
		OneOf(profile.FieldRole, string(role), string(profile.RoleClient), string(profile.RoleProvider))

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.accountService.Signup(request.Context(), SignupInput{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity.SetSessionCookie(writer, result.Login, handler.secureCookie)
	respond.Created(writer, sessionResponse{Profile: result.Profile, Redirect: result.Redirect})
}

/*
POST /auth/login.

Description: Verifies credentials, sets the session cookie and returns the
dashboard of the user's role.

Response:
  - 200: sessionResponse
  - 401: UNAUTHORIZED: Invalid credentials
  - 404: PROFILE_NOT_FOUND: Account has no profile
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(identity.FieldEmail, input.Email)
	validator.Required(identity.FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.accountService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity.SetSessionCookie(writer, result.Login, handler.secureCookie)
	respond.OK(writer, sessionResponse{Profile: result.Profile, Redirect: result.Redirect})
}

/*
POST /auth/logout.

Description: Revokes the current session and clears the cookie.

Response:
  - 200: redirectResponse: "/login.html"
  - 401: AUTH_REQUIRED
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Logout(request.Context(), claims.SessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity.ClearSessionCookie(writer, handler.secureCookie)
	respond.OK(writer, redirectResponse{Redirect: constants.PageLogin})
}

/*
GET /auth/me.

Response:
  - 200: Profile
  - 401: AUTH_REQUIRED
  - 404: PROFILE_NOT_FOUND
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.accountService.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}
