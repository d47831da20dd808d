package vision

import (
	"context"

	"golang.org/x/oauth2"
)

// googleTokenURL is the OAuth endpoint used to redeem refresh tokens.
const googleTokenURL = "https://oauth2.googleapis.com/token"

// RefreshTokenSource returns a self-refreshing oauth2.TokenSource backed
// by a stored refresh token. Access tokens are minted lazily and reused
// until they expire, so long-running ingestion batches keep working
// without re-prompting the user.
func RefreshTokenSource(ctx context.Context, clientID, clientSecret, refreshToken string) oauth2.TokenSource {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: googleTokenURL,
		},
	}

	return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}
