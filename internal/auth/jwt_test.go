package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func testCodec(ttl time.Duration) *TokenCodec {
	return NewTokenCodec(testSecret, ttl)
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	codec := testCodec(15 * time.Minute)

	token, err := codec.Issue("alice", "Alice", false)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "Alice", claims.DisplayName)
	assert.False(t, claims.Admin)
	assert.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssueAndVerify_AdminClaimCarried(t *testing.T) {
	codec := testCodec(15 * time.Minute)

	token, err := codec.Issue("root", "Super User", true)
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "root", claims.Username)
	assert.True(t, claims.Admin)
}

func TestVerify_WrongSecret(t *testing.T) {
	codec := testCodec(15 * time.Minute)

	token, err := codec.Issue("alice", "Alice", false)
	require.NoError(t, err)

	other := NewTokenCodec("a-completely-different-secret", 15*time.Minute)
	claims, err := other.Verify(token)

	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExpiredToken(t *testing.T) {
	// Negative TTL issues an already expired token
	codec := testCodec(-1 * time.Hour)

	token, err := codec.Issue("alice", "Alice", false)
	require.NoError(t, err)

	claims, err := codec.Verify(token)

	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_TamperedPayload(t *testing.T) {
	codec := testCodec(15 * time.Minute)

	token, err := codec.Issue("alice", "Alice", false)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Flip one byte of the claims segment; any difference must be rejected.
	payload := []byte(parts[1])
	if payload[10] == 'a' {
		payload[10] = 'b'
	} else {
		payload[10] = 'a'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	claims, err := codec.Verify(tampered)

	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestVerify_TamperedSignature(t *testing.T) {
	codec := testCodec(15 * time.Minute)

	token, err := codec.Issue("alice", "Alice", false)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	claims, err := codec.Verify(tampered)

	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MalformedToken(t *testing.T) {
	codec := testCodec(15 * time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "Empty token",
			token: "",
		},
		{
			name:  "Random string",
			token: "not-a-valid-jwt-token",
		},
		{
			name:  "Incomplete JWT",
			token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Verify(tt.token)

			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenExpiration(t *testing.T) {
	codec := testCodec(300 * time.Millisecond)

	token, err := codec.Issue("alice", "Alice", false)
	require.NoError(t, err)

	// Valid immediately after issuance
	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	// Wait for the token to expire (extra margin)
	time.Sleep(500 * time.Millisecond)

	claims, err = codec.Verify(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestGetClaimsFromContext_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	expected := &Claims{Username: "alice", DisplayName: "Alice", Admin: true}
	c.Set(ClaimsKey, expected)

	claims, err := GetClaimsFromContext(c)

	require.NoError(t, err)
	assert.Equal(t, expected, claims)
}

func TestGetClaimsFromContext_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	claims, err := GetClaimsFromContext(c)

	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "claims not found in context")
}

func TestGetClaimsFromContext_InvalidType(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Set(ClaimsKey, "not-claims")

	claims, err := GetClaimsFromContext(c)

	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "invalid claims type")
}

func BenchmarkIssue(b *testing.B) {
	codec := testCodec(15 * time.Minute)
	for i := 0; i < b.N; i++ {
		codec.Issue("alice", "Alice", false)
	}
}

func BenchmarkVerify(b *testing.B) {
	codec := testCodec(15 * time.Minute)
	token, _ := codec.Issue("alice", "Alice", false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		codec.Verify(token)
	}
}
