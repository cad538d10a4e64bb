// Package auth builds the Spotify implicit-grant authorization URL and reads the access
// token back out of the callback fragment.
//
// The access token is returned in the URL fragment, so it never reaches a server log. Token
// lifetime is not tracked: an expired token is only noticed when the history request answers 401.
package auth

import (
	"strings"

	"golang.org/x/oauth2"
)

const (
	// DefaultAuthURL is Spotify's authorize endpoint.
	DefaultAuthURL = "https://accounts.spotify.com/authorize"

	// Scope is the only permission requested.
	Scope = "user-read-recently-played"

	tokenKey = "access_token"
	errorKey = "error"
)

// Authorizer builds authorization URLs against a fixed endpoint.
type Authorizer struct {
	authURL string
}

// NewAuthorizer returns an [Authorizer] for authURL, or for [DefaultAuthURL] when empty.
func NewAuthorizer(authURL string) *Authorizer {
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	return &Authorizer{authURL: authURL}
}

// URL returns the implicit-grant authorization URL.
//
// redirectURI is percent-encoded once. The consent dialog is always shown so that a user can
// switch accounts after logging out.
func (a *Authorizer) URL(clientID, redirectURI string) string {
	config := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      []string{Scope},
		Endpoint:    oauth2.Endpoint{AuthURL: a.authURL},
	}

	return config.AuthCodeURL("",
		oauth2.SetAuthURLParam("response_type", "token"),
		oauth2.SetAuthURLParam("show_dialog", "true"),
	)
}

// BuildAuthorizationURL builds the authorization URL against [DefaultAuthURL].
func BuildAuthorizationURL(clientID, redirectURI string) string {
	return NewAuthorizer("").URL(clientID, redirectURI)
}

// ExtractToken returns the access_token value from a callback fragment.
//
// A leading '#' is ignored. The key must match exactly, so "other_access_token=x" does not
// count, and an empty value is reported as absent. The value is returned as it appears.
func ExtractToken(fragment string) (string, bool) {
	return Param(fragment, tokenKey)
}

// CallbackError returns the error code Spotify puts in the fragment when the user denies
// access, or "" when there is none.
func CallbackError(fragment string) string {
	code, _ := Param(fragment, errorKey)
	return code
}

// Param looks up the first non-empty value of key in an '&'-separated fragment.
func Param(fragment, key string) (string, bool) {
	fragment = strings.TrimPrefix(fragment, "#")
	for pair := range strings.SplitSeq(fragment, "&") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k != key {
			continue
		}
		if v == "" {
			return "", false
		}
		return v, true
	}
	return "", false
}

// FragmentOf returns everything after the first '#' of rawURL, undecoded.
func FragmentOf(rawURL string) string {
	_, fragment, _ := strings.Cut(strings.TrimSpace(rawURL), "#")
	return fragment
}
