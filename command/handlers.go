package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-oauth1/core"
)

type ConsumerService interface {
	SetConsumer(ctx context.Context, key string, secret string) (core.SetConsumerResult, error)
}

type AuthorizationService interface {
	Authorize(ctx context.Context) (core.AccessToken, error)
}

type SetConsumerCommand struct {
	service ConsumerService
}

func NewSetConsumerCommand(service ConsumerService) *SetConsumerCommand {
	return &SetConsumerCommand{service: service}
}

func (c *SetConsumerCommand) Execute(ctx context.Context, msg SetConsumerMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: consumer service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.SetConsumer(ctx, msg.Key, msg.Secret)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

// AuthorizeCommand runs the interactive three-legged flow. The access token
// is stored as the command result so callers can report a key hint.
type AuthorizeCommand struct {
	service AuthorizationService
}

func NewAuthorizeCommand(service AuthorizationService) *AuthorizeCommand {
	return &AuthorizeCommand{service: service}
}

func (c *AuthorizeCommand) Execute(ctx context.Context, _ AuthorizeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: authorization service is required")
	}
	out, err := c.service.Authorize(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
