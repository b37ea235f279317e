package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/learntube/internal/types"
)

func newAuthTestServer() *Server {
	return newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})
}

func TestAuthRegister(t *testing.T) {
	s := newAuthTestServer()

	rr := doRequest(s, "POST", "/v1/auth/register",
		`{"name": "Test User", "email": "test@example.com", "password": "SecurePass123!"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, "test@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthRegisterRejectsBadEmail(t *testing.T) {
	s := newAuthTestServer()

	rr := doRequest(s, "POST", "/v1/auth/register",
		`{"name": "Test User", "email": "not-an-email", "password": "SecurePass123!"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	s := newAuthTestServer()
	body := `{"name": "Test User", "email": "dup@example.com", "password": "SecurePass123!"}`

	rr := doRequest(s, "POST", "/v1/auth/register", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doRequest(s, "POST", "/v1/auth/register", body)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAuthLogin(t *testing.T) {
	s := newAuthTestServer()
	rr := doRequest(s, "POST", "/v1/auth/register",
		`{"name": "Test User", "email": "login@example.com", "password": "SecurePass123!"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doRequest(s, "POST", "/v1/auth/login",
		`{"email": "login@example.com", "password": "SecurePass123!"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	claims, err := s.jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	s := newAuthTestServer()
	rr := doRequest(s, "POST", "/v1/auth/register",
		`{"name": "Test User", "email": "login@example.com", "password": "SecurePass123!"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doRequest(s, "POST", "/v1/auth/login",
		`{"email": "login@example.com", "password": "wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthUpdatePasswordRequiresToken(t *testing.T) {
	s := newAuthTestServer()

	rr := doRequest(s, "PUT", "/v1/auth/password",
		`{"current_password": "SecurePass123!", "new_password": "NewPass456!"}`)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthUpdatePasswordWithToken(t *testing.T) {
	s := newAuthTestServer()
	rr := doRequest(s, "POST", "/v1/auth/register",
		`{"name": "Test User", "email": "pw@example.com", "password": "SecurePass123!"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var registered types.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))

	req := newJSONRequest("PUT", "/v1/auth/password",
		`{"current_password": "SecurePass123!", "new_password": "NewPass456!"}`)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rr = serve(s, req)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(s, "POST", "/v1/auth/login",
		`{"email": "pw@example.com", "password": "NewPass456!"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}
