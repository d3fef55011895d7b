// Package auth issues and validates the short-lived tokens that gate the
// live event stream. EventSource cannot send headers, so the token rides in
// the query string and is scoped to exactly one job.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// Validation failures.
var (
	ErrTokenInvalid = errors.New("event token is invalid")
	ErrTokenExpired = errors.New("event token has expired")
	ErrTokenScope   = errors.New("event token is for a different job")
)

// Issuer mints HMAC-signed, job-scoped event tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer. An empty secret gets a random one generated
// at startup, which invalidates outstanding tokens on restart.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			log.Printf("Auth: failed to generate event token secret: %v", err)
		}
		log.Printf("Auth: no event token secret configured, generated an ephemeral one")
	}
	return &Issuer{secret: key, ttl: ttl, now: time.Now}
}

// Issue returns a token valid for the issuer's TTL, scoped to one job.
func (i *Issuer) Issue(jobID string) string {
	expiry := i.now().Add(i.ttl).Unix()
	payload := fmt.Sprintf("%s.%d", jobID, expiry)
	return payload + "." + i.sign(payload)
}

// Validate checks signature, expiry, and job scope.
func (i *Issuer) Validate(token, jobID string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrTokenInvalid
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(i.sign(payload)), []byte(parts[2])) {
		return ErrTokenInvalid
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ErrTokenInvalid
	}
	if i.now().Unix() > expiry {
		return ErrTokenExpired
	}
	if parts[0] != jobID {
		return ErrTokenScope
	}
	return nil
}

func (i *Issuer) sign(payload string) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
