package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_IssueAndValidate(t *testing.T) {
	issuer := NewIssuer("secret", 15*time.Minute)

	token := issuer.Issue("job-1")

	require.NoError(t, issuer.Validate(token, "job-1"))
}

func TestIssuer_RejectsWrongJob(t *testing.T) {
	issuer := NewIssuer("secret", 15*time.Minute)

	token := issuer.Issue("job-1")

	assert.ErrorIs(t, issuer.Validate(token, "job-2"), ErrTokenScope)
}

func TestIssuer_RejectsTampering(t *testing.T) {
	issuer := NewIssuer("secret", 15*time.Minute)

	token := issuer.Issue("job-1")
	tampered := token[:len(token)-2] + "xx"

	assert.ErrorIs(t, issuer.Validate(tampered, "job-1"), ErrTokenInvalid)
	assert.ErrorIs(t, issuer.Validate("garbage", "job-1"), ErrTokenInvalid)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	issuer := NewIssuer("secret", 15*time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token := issuer.Issue("job-1")
	issuer.now = time.Now

	assert.ErrorIs(t, issuer.Validate(token, "job-1"), ErrTokenExpired)
}

func TestIssuer_RejectsForeignSignature(t *testing.T) {
	issuer := NewIssuer("secret", 15*time.Minute)
	other := NewIssuer("different", 15*time.Minute)

	token := other.Issue("job-1")

	assert.ErrorIs(t, issuer.Validate(token, "job-1"), ErrTokenInvalid)
}

func TestIssuer_EmptySecretGetsEphemeralOne(t *testing.T) {
	issuer := NewIssuer("", 15*time.Minute)

	token := issuer.Issue("job-1")
	require.NoError(t, issuer.Validate(token, "job-1"))
}
