// Package auth resolves bearer tokens for the Directus client from a session
// kept in a store.Store.
package auth

import (
	"strconv"
	"time"
)

// Token is a Directus session as persisted in the store.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the access token expired strictly before now, at
// one-second resolution. A token without an expiry is expired.
func (t *Token) Expired(now time.Time) bool {
	if t == nil || t.ExpiresAt.IsZero() {
		return true
	}

	return t.ExpiresAt.Unix() < now.Unix()
}

// TokenResponse is the data member of a login or refresh response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// Expires is the access token lifetime in milliseconds.
	Expires int64 `json:"expires"`
}

// Token converts the response into a session anchored at now.
func (r *TokenResponse) Token(now time.Time) *Token {
	return &Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    time.Unix(now.Unix()+r.Expires/1000, 0),
	}
}

func formatExpiry(expiresAt time.Time) string {
	return strconv.FormatInt(expiresAt.Unix(), 10)
}

func parseExpiry(value string) (time.Time, bool) {
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Stores written by older clients may hold fractional seconds.
		fractional, floatErr := strconv.ParseFloat(value, 64)
		if floatErr != nil {
			return time.Time{}, false
		}

		seconds = int64(fractional)
	}

	return time.Unix(seconds, 0), true
}
