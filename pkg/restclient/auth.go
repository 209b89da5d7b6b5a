package restclient

import (
	"errors"
	"net/http"
)

// Authenticator attaches credentials to an outgoing request.
type Authenticator interface {
	Authenticate(req *http.Request) error
}

// APIKeyAuth authenticates with an "Authorization: App <key>" header.
type APIKeyAuth struct {
	Key string
}

func (a APIKeyAuth) Authenticate(req *http.Request) error {
	req.Header.Set("Authorization", "App "+a.Key)
	return nil
}

// TokenSource yields the bearer token that is current at call time.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource whose value never changes. A client built
// with it does not observe later token refreshes.
type StaticToken string

func (t StaticToken) Token() string {
	return string(t)
}

// BearerAuth authenticates with an "Authorization: Bearer <token>" header.
// The token is read from Source on every request.
type BearerAuth struct {
	Source TokenSource
}

func (a BearerAuth) Authenticate(req *http.Request) error {
	if a.Source == nil {
		return errors.New("bearer auth: no token source")
	}
	req.Header.Set("Authorization", "Bearer "+a.Source.Token())
	return nil
}
