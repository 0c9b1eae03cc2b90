package command

import (
	"strings"
)

const (
	TypeSetConsumer = "oauth1.command.consumer.set"
	TypeAuthorize   = "oauth1.command.authorize"
)

type SetConsumerMessage struct {
	Key    string
	Secret string
}

func (SetConsumerMessage) Type() string { return TypeSetConsumer }

func (m SetConsumerMessage) Validate() error {
	if strings.TrimSpace(m.Key) == "" {
		return commandValidationError("key", "consumer key is required")
	}
	if strings.TrimSpace(m.Secret) == "" {
		return commandValidationError("secret", "consumer secret is required")
	}
	return nil
}

// AuthorizeMessage carries no payload; the flow reads the stored consumer.
type AuthorizeMessage struct{}

func (AuthorizeMessage) Type() string { return TypeAuthorize }

func (AuthorizeMessage) Validate() error { return nil }
