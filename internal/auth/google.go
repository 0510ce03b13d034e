package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/musecraft/musecraft/internal/apperr"
	"github.com/musecraft/musecraft/internal/httputil"
)

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint.
type GoogleVerifier struct {
	client   *http.Client
	endpoint string
	clientID string
}

// NewGoogleVerifier creates a verifier. endpoint defaults to Google's
// public tokeninfo URL; tests point it at a local server.
func NewGoogleVerifier(clientID, endpoint string) *GoogleVerifier {
	if endpoint == "" {
		endpoint = "https://oauth2.googleapis.com/tokeninfo"
	}
	return &GoogleVerifier{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: endpoint,
		clientID: clientID,
	}
}

// Verify checks the credential and returns the identity it asserts. Any
// failure maps to the unauthenticated (401) class.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (User, error) {
	if strings.TrimSpace(credential) == "" {
		return User{}, apperr.Unauthenticated("Missing credential")
	}

	form := url.Values{"id_token": {credential}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return User{}, apperr.Unauthenticated("Credential verification failed")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return User{}, apperr.Unauthenticated("Credential verification failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, apperr.Unauthenticated("Invalid credential")
	}

	body, err := httputil.ReadBody(resp.Body, 64<<10)
	if err != nil {
		return User{}, apperr.Unauthenticated("Credential verification failed")
	}

	info := gjson.ParseBytes(body)
	if v.clientID != "" && info.Get("aud").String() != v.clientID {
		return User{}, apperr.Unauthenticated("Credential issued for another application")
	}
	sub := info.Get("sub").String()
	if sub == "" {
		return User{}, apperr.Unauthenticated("Invalid credential")
	}

	return User{
		ID:        fmt.Sprintf("google:%s", sub),
		Email:     info.Get("email").String(),
		Name:      info.Get("name").String(),
		AvatarURL: info.Get("picture").String(),
	}, nil
}
