// Package oauth1 is the entry point for embedding the OAuth 1.0a
// authorizer: it re-exports the core service and wires its command and query
// handlers.
package oauth1

import "github.com/goliatone/go-oauth1/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type CredentialStore = core.CredentialStore
type TransportAdapter = core.TransportAdapter
type VerifierPrompt = core.VerifierPrompt
type Confirmer = core.Confirmer
type Preconfirmed = core.Preconfirmed

type ConsumerCredential = core.ConsumerCredential
type AccessToken = core.AccessToken
type SetConsumerResult = core.SetConsumerResult
type StatusResult = core.StatusResult

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithStoreFactory      = core.WithStoreFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithSigner            = core.WithSigner
	WithTransport         = core.WithTransport
	WithCredentialStore   = core.WithCredentialStore
	WithVerifierPrompt    = core.WithVerifierPrompt
	WithConfirmer         = core.WithConfirmer
	WithJSONAccessor      = core.WithJSONAccessor
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
