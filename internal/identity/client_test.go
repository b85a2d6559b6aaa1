package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sotsvc/service-estimate/internal/domain"
)

func TestSignInReturnsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "test-key", r.Header.Get("apikey"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jamie@example.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Session{
			AccessToken: "token-abc",
			ExpiresIn:   3600,
			User:        User{ID: "u-1", Email: "jamie@example.com"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	sess, err := c.SignIn(context.Background(), "jamie@example.com", "hunter22")

	require.NoError(t, err)
	assert.Equal(t, "token-abc", sess.AccessToken)
	assert.Equal(t, "u-1", sess.User.ID)
}

func TestSignInBadCredentialsIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.SignIn(context.Background(), "jamie@example.com", "wrong")

	require.Error(t, err)
	assert.Equal(t, domain.CodeUnauthorized, domain.CodeOf(err))
}

func TestSignUpDuplicateEmailIsConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"msg": "User already registered"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.SignUp(context.Background(), "jamie@example.com", "hunter22", "Jamie")

	require.Error(t, err)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
}

func TestSignOutIgnoresAlreadyRevokedSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	err := c.SignOut(context.Background(), "stale-token")

	assert.NoError(t, err)
}

func TestGetUserServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.GetUser(context.Background(), "token-abc")

	require.Error(t, err)
	assert.Equal(t, domain.CodeUnavailable, domain.CodeOf(err))
	assert.True(t, domain.IsRetryable(err))
}

func TestProviderUnreachableIsUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "test-key")

	_, err := c.SignIn(context.Background(), "jamie@example.com", "hunter22")

	require.Error(t, err)
	assert.Equal(t, domain.CodeUnavailable, domain.CodeOf(err))
}
