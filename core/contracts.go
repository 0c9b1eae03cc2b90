package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// CredentialStore persists exactly one consumer credential and at most one
// access token. Mutations run inside a single transaction each.
type CredentialStore interface {
	HasConsumer(ctx context.Context) (bool, error)
	HasAccess(ctx context.Context) (bool, error)
	GetConsumer(ctx context.Context) (*ConsumerCredential, error)
	GetAccess(ctx context.Context) (*AccessToken, error)
	SetConsumer(ctx context.Context, consumer ConsumerCredential, confirmer Confirmer) (SetConsumerResult, error)
	SetAccess(ctx context.Context, access AccessToken, confirmer Confirmer) error
}

// TransportAdapter sends a request and returns the raw status and body.
// Non-2xx responses are not errors at this layer.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// VerifierPrompt is the single user-facing suspension point of the
// authorization flow.
type VerifierPrompt interface {
	Present(ctx context.Context, authorizeURL string) error
	AwaitVerifier(ctx context.Context) (string, error)
}

// Confirmer asks the user before a destructive overwrite.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Preconfirmed answers every prompt with the same decision.
type Preconfirmed bool

func (p Preconfirmed) Confirm(context.Context, string) (bool, error) {
	return bool(p), nil
}

// JSONAccessor resolves a string at a key path inside a JSON document.
type JSONAccessor interface {
	GetString(data []byte, path ...string) (string, bool)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
