package main

import (
	"context"
	"fmt"
	"io"
	"os"

	gocmd "github.com/goliatone/go-command"
	oauth1 "github.com/goliatone/go-oauth1"
	"github.com/goliatone/go-oauth1/adapters/gocommand"
	"github.com/goliatone/go-oauth1/adapters/gologger"
	oauthcommand "github.com/goliatone/go-oauth1/command"
	"github.com/goliatone/go-oauth1/core"
	"github.com/goliatone/go-oauth1/interaction"
	oauthquery "github.com/goliatone/go-oauth1/query"
	sqlstore "github.com/goliatone/go-oauth1/store/sql"
	"github.com/goliatone/go-oauth1/transport"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type appOptions struct {
	ConfigPath string
	Runtime    core.Config
	Debug      bool
	Yes        bool
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	HTTPClient transport.HTTPDoer
}

func (g *Globals) options() appOptions {
	return appOptions{
		ConfigPath: g.Config,
		Runtime: core.Config{
			Endpoints: core.EndpointsConfig{
				RequestToken: g.Endpoints.RequestTokenURL,
				Authorize:    g.Endpoints.AuthorizeURL,
				AccessToken:  g.Endpoints.AccessTokenURL,
				Profile:      g.Endpoints.ProfileURL,
			},
			OAuth: core.OAuthConfig{Callback: g.Callback},
			Database: core.DatabaseConfig{
				Driver: g.Driver,
				DSN:    g.DB,
				Debug:  g.Debug,
			},
		},
		Debug: g.Debug,
		Yes:   g.Yes,
		In:    g.stdin,
		Out:   g.stdout,
		Err:   g.stderr,
	}
}

// app owns the database client and the command bus for one invocation.
type app struct {
	client  *persistence.Client
	service *oauth1.Service
	bus     *gocommand.Bus
	out     io.Writer
}

func openApp(ctx context.Context, opts appOptions) (*app, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	provider := gologger.NewConsoleLogger(opts.Err, opts.Debug)
	configProvider := core.NewCfgxConfigProvider(core.YAMLFileLoader{Path: opts.ConfigPath})
	cfg, err := resolveConfig(ctx, configProvider, opts.Runtime)
	if err != nil {
		return nil, err
	}

	client, err := sqlstore.OpenClient(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &app{client: client, out: opts.Out}
	if err := sqlstore.Migrate(ctx, client, cfg.Database.Driver); err != nil {
		a.Close()
		return nil, err
	}

	cacheService, err := repositorycache.NewCacheService(repositorycache.DefaultConfig())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("oauth1: credential cache: %w", err)
	}
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		a.Close()
		return nil, err
	}
	factory.WithCache(cacheService)

	terminal := interaction.NewTerminal(opts.In, opts.Out)
	var confirmer core.Confirmer = terminal
	if opts.Yes {
		confirmer = core.Preconfirmed(true)
	}
	restAdapter := transport.NewRESTAdapterFromConfig(cfg.HTTP)
	if opts.HTTPClient != nil {
		restAdapter.Client = opts.HTTPClient
	}

	service, err := oauth1.NewService(opts.Runtime,
		oauth1.WithLoggerProvider(provider),
		oauth1.WithConfigProvider(configProvider),
		oauth1.WithPersistenceClient(client),
		oauth1.WithStoreFactory(factory),
		oauth1.WithTransport(restAdapter),
		oauth1.WithVerifierPrompt(terminal),
		oauth1.WithConfirmer(confirmer),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.service = service

	facade, err := oauth1.NewFacade(service)
	if err != nil {
		a.Close()
		return nil, err
	}
	bus, err := gocommand.NewBus(gocmd.NewRegistry(), provider.GetLogger("oauth1.commands"))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.bus = bus
	if err := registerHandlers(bus, facade); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func registerHandlers(bus *gocommand.Bus, facade *oauth1.Facade) error {
	if err := gocommand.HandleCommand[oauthcommand.SetConsumerMessage](bus, facade.Commands().SetConsumer); err != nil {
		return err
	}
	if err := gocommand.HandleCommand[oauthcommand.AuthorizeMessage](bus, facade.Commands().Authorize); err != nil {
		return err
	}
	if err := gocommand.HandleQuery[oauthquery.StatusMessage, core.StatusResult](bus, facade.Queries().Status); err != nil {
		return err
	}
	if err := gocommand.HandleQuery[oauthquery.CredentialPresenceMessage, oauthquery.CredentialPresence](
		bus, facade.Queries().CredentialPresence,
	); err != nil {
		return err
	}
	return bus.Initialize()
}

func resolveConfig(ctx context.Context, provider core.ConfigProvider, runtime core.Config) (core.Config, error) {
	defaults := core.DefaultConfig()
	loaded, err := provider.Load(ctx, defaults)
	if err != nil {
		return core.Config{}, err
	}
	return core.GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
}

func (a *app) Close() {
	if a == nil {
		return
	}
	if a.bus != nil {
		a.bus.Close()
		a.bus = nil
	}
	if a.client != nil {
		_ = a.client.Close()
		a.client = nil
	}
}

func (a *app) setConsumer(ctx context.Context, key string, secret string) error {
	msg := oauthcommand.SetConsumerMessage{Key: key, Secret: secret}
	if err := gocommand.ValidateMessageContract(msg); err != nil {
		return err
	}
	collector := gocmd.NewResult[core.SetConsumerResult]()
	if err := gocommand.Dispatch(gocmd.ContextWithResult(ctx, collector), msg); err != nil {
		return err
	}
	result, _ := collector.Load()
	_, err := fmt.Fprintln(a.out, consumerMessage(result))
	return err
}

func (a *app) authorize(ctx context.Context) error {
	collector := gocmd.NewResult[core.AccessToken]()
	if err := gocommand.Dispatch(gocmd.ContextWithResult(ctx, collector), oauthcommand.AuthorizeMessage{}); err != nil {
		return err
	}
	access, _ := collector.Load()
	_, err := fmt.Fprintln(a.out, authorizeMessage(access))
	return err
}

func (a *app) status(ctx context.Context) error {
	result, err := gocommand.Query[oauthquery.StatusMessage, core.StatusResult](ctx, oauthquery.StatusMessage{})
	if err != nil {
		if core.IsTextCode(err, core.ErrorCredentialsMissing) {
			return a.missingCredentialsHint(ctx, err)
		}
		return err
	}
	_, err = fmt.Fprintln(a.out, statusMessage(result))
	return err
}

func (a *app) missingCredentialsHint(ctx context.Context, cause error) error {
	presence, err := gocommand.Query[oauthquery.CredentialPresenceMessage, oauthquery.CredentialPresence](
		ctx, oauthquery.CredentialPresenceMessage{},
	)
	if err != nil {
		return cause
	}
	hinted := core.MapError(cause).Clone()
	hinted.Message = fmt.Sprintf("%s (%s)", hinted.Message, missingCredentialsHint(presence))
	return hinted
}
