package main

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-oauth1/core"
	oauthquery "github.com/goliatone/go-oauth1/query"
)

func consumerMessage(result core.SetConsumerResult) string {
	switch result.Outcome {
	case core.SetConsumerUnchanged:
		return "Consumer key and secret already stored"
	case core.SetConsumerReplaced:
		if result.AccessCleared {
			return "Consumer key and secret replaced; stored access token erased"
		}
		return "Consumer key and secret replaced"
	default:
		return "Consumer key and secret stored"
	}
}

func authorizeMessage(access core.AccessToken) string {
	return fmt.Sprintf("Authorization complete; access token %s stored", core.KeyHint(access.Key))
}

func statusMessage(result core.StatusResult) string {
	switch result.State {
	case core.StatusAuthorized:
		return fmt.Sprintf("Authorized as %s", result.Username)
	case core.StatusUnauthorized:
		return "Not authorized: the stored access token was rejected"
	default:
		return fmt.Sprintf("Unexpected response from profile endpoint: HTTP %d", result.StatusCode)
	}
}

func missingCredentialsHint(presence oauthquery.CredentialPresence) string {
	if !presence.Consumer {
		return "run `oauth1 consumer <key> <secret>` first"
	}
	return "run `oauth1 authorize` first"
}

// errorMessage renders err for the terminal without the taxonomy envelope.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return err.Error()
	}
	if rich.Source != nil {
		return fmt.Sprintf("%s: %v", rich.Message, rich.Source)
	}
	return rich.Message
}
