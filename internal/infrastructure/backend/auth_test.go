package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func TestRemoteAuthenticateUsesReturnedUser(t *testing.T) {
	ex := &recordingExecutor{resp: json.RawMessage(`{"token":"t1","user":{"id":"u1","username":"alice","role":"insurer","email":"a@x.rw"}}`)}
	b := NewRemoteBackend(NewApiClient(ex))

	sess, err := b.Authenticate(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "t1", sess.Token)
	assert.Equal(t, domain.User{ID: "u1", Username: "alice", Role: domain.RoleInsurer, Email: "a@x.rw"}, sess.User)
}

func TestRemoteAuthenticateDerivesUserFromClaims(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"sub": "u7", "role": "Surveyor", "email": "s@x.rw"})
	raw, _ := json.Marshal(map[string]string{"accessToken": tok})
	b := NewRemoteBackend(NewApiClient(&recordingExecutor{resp: raw}))

	sess, err := b.Authenticate(context.Background(), "sam", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u7", sess.User.ID)
	assert.Equal(t, "sam", sess.User.Username)
	assert.Equal(t, domain.RoleSurveyor, sess.User.Role)
	assert.Equal(t, "s@x.rw", sess.User.Email)
}

func TestRemoteAuthenticateRejections(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		ex := &recordingExecutor{err: &domain.APIError{Status: status, Message: "Invalid credentials"}}
		_, err := NewRemoteBackend(NewApiClient(ex)).Authenticate(context.Background(), "alice", "bad")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "status %d", status)
	}

	ex := &recordingExecutor{err: &domain.APIError{Status: http.StatusBadGateway, Message: "upstream"}}
	_, err := NewRemoteBackend(NewApiClient(ex)).Authenticate(context.Background(), "alice", "pw")
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, http.StatusBadGateway, domain.StatusOf(err))
}

func TestRemoteAuthenticateWithoutToken(t *testing.T) {
	ex := &recordingExecutor{resp: json.RawMessage(`{"user":{"username":"alice"}}`)}
	_, err := NewRemoteBackend(NewApiClient(ex)).Authenticate(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, errNoToken)
}

func TestRemoteRegisterConflict(t *testing.T) {
	ex := &recordingExecutor{err: &domain.APIError{Status: http.StatusConflict, Message: "Username taken"}}
	_, err := NewRemoteBackend(NewApiClient(ex)).Register(context.Background(), "alice", "pw", domain.RoleFarmer)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

// sequenceExecutor serves its responses in order.
type sequenceExecutor struct {
	responses []string
	paths     []string
}

func (s *sequenceExecutor) Execute(_ context.Context, req ports.Request) (json.RawMessage, error) {
	s.paths = append(s.paths, req.Path)
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return json.RawMessage(resp), nil
}

func TestRemoteRegisterFallsBackToLogin(t *testing.T) {
	ex := &sequenceExecutor{responses: []string{
		`{"message":"registered"}`,
		`{"token":"t2","user":{"id":"u2","username":"bob","role":"underwriter"}}`,
	}}
	b := NewRemoteBackend(NewApiClient(ex))

	sess, err := b.Register(context.Background(), "bob", "pw", domain.RoleUnderwriter)
	require.NoError(t, err)
	assert.Equal(t, "t2", sess.Token)
	assert.Equal(t, domain.RoleUnderwriter, sess.User.Role)
	assert.Equal(t, []string{"/auth/register", "/auth/login"}, ex.paths)
}

func TestRemoteRegisterInvalidRole(t *testing.T) {
	ex := &recordingExecutor{}
	_, err := NewRemoteBackend(NewApiClient(ex)).Register(context.Background(), "bob", "pw", domain.Role("pilot"))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
	assert.Empty(t, ex.reqs)
}
