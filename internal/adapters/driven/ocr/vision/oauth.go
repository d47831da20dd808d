package vision

import (
	"context"
	"net/url"

	"github.com/planroomhq/planroom-cli/internal/adapters/driven/oauth"
)

const (
	// googleAuthURL is the authorization endpoint users are sent to.
	googleAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"

	// visionScope grants access to the Vision API only.
	visionScope = "https://www.googleapis.com/auth/cloud-vision"
)

// BuildAuthURL constructs the Google authorization URL for the Vision
// scope. access_type=offline together with prompt=consent makes Google
// return a refresh token, which is what the stored credentials need.
func BuildAuthURL(clientID, redirectURI, state, codeChallenge string) string {
	params := url.Values{
		"client_id":             {clientID},
		"redirect_uri":          {redirectURI},
		"response_type":         {"code"},
		"scope":                 {visionScope},
		"state":                 {state},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"S256"},
		"access_type":           {"offline"},
		"prompt":                {"consent"},
	}

	return googleAuthURL + "?" + params.Encode()
}

// ExchangeCode redeems an authorization code at Google's token endpoint.
func ExchangeCode(
	ctx context.Context,
	clientID, clientSecret, code, redirectURI, codeVerifier string,
) (*oauth.TokenResponse, error) {
	return oauth.ExchangeCodeForTokens(
		ctx, googleTokenURL, clientID, clientSecret,
		code, redirectURI, codeVerifier,
	)
}
