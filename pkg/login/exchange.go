package login

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuth2Exchanger checks a verification code by exchanging it at the token
// endpoint. The returned token is discarded.
type OAuth2Exchanger struct {
	Config *oauth2.Config
}

// Exchange implements CodeExchanger.
func (e OAuth2Exchanger) Exchange(ctx context.Context, code string) error {
	_, err := e.Config.Exchange(ctx, code)
	return err
}
