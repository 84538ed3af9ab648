package youtube

import "golang.org/x/oauth2"

// StaticTokenSource wraps a raw access token as an oauth2.TokenSource.
// Useful when the token is obtained out of band, e.g. from an
// environment variable.
func StaticTokenSource(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}
