package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/psisco/zakladki/internal/models"
)

func doJSONRequest(t *testing.T, method, target, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, target, &body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)
	return rr
}

func decodeAuthResponse(t *testing.T, rr *httptest.ResponseRecorder) AuthResponse {
	t.Helper()
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestAPI_Register_ThenLogin(t *testing.T) {
	suffix := uuid.New().String()[:8]
	email := fmt.Sprintf("register_%s@example.com", suffix)

	rr := doJSONRequest(t, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Email:    email,
		Password: "password123",
		Username: "register_" + suffix,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decodeAuthResponse(t, rr)
	require.NotNil(t, resp.User)
	require.Equal(t, models.AccountTypeFree, resp.User.AccountType)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	rr = doJSONRequest(t, "POST", "/api/v1/auth/login", "", LoginRequest{
		Email:    email,
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	loginResp := decodeAuthResponse(t, rr)
	require.Equal(t, resp.User.ID, loginResp.User.ID)
}

func TestAPI_Register_DerivedUsername(t *testing.T) {
	rr := doJSONRequest(t, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Email:    "a@x.com",
		Password: "pass123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decodeAuthResponse(t, rr)
	require.Equal(t, "a", resp.User.Username)
}

func TestAPI_Register_DuplicateEmail(t *testing.T) {
	user, _ := createAPITestUser(t, models.AccountTypeFree)

	rr := doJSONRequest(t, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Email:    user.Email,
		Password: "password123",
		Username: "someone_else_" + uuid.New().String()[:8],
	})
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestAPI_Register_DuplicateUsername(t *testing.T) {
	user, _ := createAPITestUser(t, models.AccountTypeFree)

	rr := doJSONRequest(t, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Email:    fmt.Sprintf("fresh_%s@example.com", uuid.New().String()[:8]),
		Password: "password123",
		Username: user.Username,
	})
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestAPI_Register_Validation(t *testing.T) {
	rr := doJSONRequest(t, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Email:    "not-an-email",
		Password: "password123",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = doJSONRequest(t, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Email:    "short@example.com",
		Password: "abc",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestAPI_Login_BadCredentials(t *testing.T) {
	user, _ := createAPITestUser(t, models.AccountTypeFree)

	rr := doJSONRequest(t, "POST", "/api/v1/auth/login", "", LoginRequest{
		Email:    user.Email,
		Password: "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSONRequest(t, "POST", "/api/v1/auth/login", "", LoginRequest{
		Email:    "ghost@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAPI_RefreshToken(t *testing.T) {
	user, _ := createAPITestUser(t, models.AccountTypeFree)

	rr := doJSONRequest(t, "POST", "/api/v1/auth/login", "", LoginRequest{
		Email:    user.Email,
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeAuthResponse(t, rr)

	rr = doJSONRequest(t, "POST", "/api/v1/auth/refresh", "", RefreshTokenRequest{
		RefreshToken: resp.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	refreshed := decodeAuthResponse(t, rr)
	require.Equal(t, user.ID, refreshed.User.ID)
	require.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted as a refresh token.
	rr = doJSONRequest(t, "POST", "/api/v1/auth/refresh", "", RefreshTokenRequest{
		RefreshToken: resp.AccessToken,
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
