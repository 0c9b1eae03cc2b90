package oauth1

import (
	"fmt"

	oauthcommand "github.com/goliatone/go-oauth1/command"
	oauthquery "github.com/goliatone/go-oauth1/query"
)

type CommandQueryService interface {
	oauthcommand.ConsumerService
	oauthcommand.AuthorizationService
	oauthquery.StatusChecker
	oauthquery.CredentialPresenceReader
}

type Commands struct {
	SetConsumer *oauthcommand.SetConsumerCommand
	Authorize   *oauthcommand.AuthorizeCommand
}

type Queries struct {
	Status             *oauthquery.StatusQuery
	CredentialPresence *oauthquery.CredentialPresenceQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("oauth1: command/query service is required")
	}
	return &Facade{
		service: service,
		commands: Commands{
			SetConsumer: oauthcommand.NewSetConsumerCommand(service),
			Authorize:   oauthcommand.NewAuthorizeCommand(service),
		},
		queries: Queries{
			Status:             oauthquery.NewStatusQuery(service),
			CredentialPresence: oauthquery.NewCredentialPresenceQuery(service),
		},
	}, nil
}

// New builds the core service and wraps it in a Facade.
func New(cfg Config, opts ...Option) (*Facade, error) {
	service, err := NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewFacade(service)
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*Service)(nil)
