package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	// Packages
	kong "github.com/alecthomas/kong"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type CLI struct {
	Globals

	// Commands
	Consumer  ConsumerCommand  `cmd:"" help:"Set OAuth consumer key and secret"`
	Authorize AuthorizeCommand `cmd:"" help:"Authorize with an account"`
	Status    StatusCommand    `cmd:"" help:"Display OAuth status"`
}

type Globals struct {
	Config   string `name:"config" help:"Optional YAML configuration file" type:"path" env:"OAUTH1_CONFIG" optional:""`
	DB       string `name:"db" help:"Credential database (sqlite path or postgres DSN)" env:"OAUTH1_DB" default:"~/.oauth1.sqlite"`
	Driver   string `name:"driver" help:"Database driver" env:"OAUTH1_DB_DRIVER" enum:"sqlite3,postgres" default:"sqlite3"`
	Callback string `name:"callback" help:"oauth_callback sent with the request token step" env:"OAUTH1_CALLBACK" optional:""`
	Debug    bool   `name:"debug" help:"Enable debug output" default:"false"`
	Yes      bool   `name:"yes" short:"y" help:"Confirm credential overwrites without prompting" default:"false"`

	Endpoints EndpointFlags `embed:"" prefix:""`

	// Private
	ctx    context.Context
	cancel context.CancelFunc
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type EndpointFlags struct {
	RequestTokenURL string `name:"request-token-url" help:"Request token endpoint" env:"OAUTH1_REQUEST_TOKEN_URL" optional:""`
	AuthorizeURL    string `name:"authorize-url" help:"User authorization endpoint" env:"OAUTH1_AUTHORIZE_URL" optional:""`
	AccessTokenURL  string `name:"access-token-url" help:"Access token endpoint" env:"OAUTH1_ACCESS_TOKEN_URL" optional:""`
	ProfileURL      string `name:"profile-url" help:"Profile endpoint used by status" env:"OAUTH1_PROFILE_URL" optional:""`
}

type ConsumerCommand struct {
	Key    string `arg:"" help:"Consumer Key"`
	Secret string `arg:"" help:"Consumer Secret"`
}

type AuthorizeCommand struct{}

type StatusCommand struct{}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func main() {
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name("oauth1"),
		kong.Description("OAuth 1.0a three-legged authorizer with local credential storage"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	// Create context
	cli.ctx, cli.cancel = signal.NotifyContext(context.Background(), os.Interrupt)
	cli.stdin, cli.stdout, cli.stderr = os.Stdin, os.Stdout, os.Stderr

	err := cmd.Run(&cli.Globals)
	cli.cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errorMessage(err))
		os.Exit(1)
	}
}

// Help is shown below the consumer usage line.
func (ConsumerCommand) Help() string {
	return "Changing consumer keys erases all existing access tokens."
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ConsumerCommand) Run(g *Globals) error {
	return g.run(func(a *app) error {
		return a.setConsumer(g.ctx, cmd.Key, cmd.Secret)
	})
}

func (cmd *AuthorizeCommand) Run(g *Globals) error {
	return g.run(func(a *app) error {
		return a.authorize(g.ctx)
	})
}

func (cmd *StatusCommand) Run(g *Globals) error {
	return g.run(func(a *app) error {
		return a.status(g.ctx)
	})
}

func (g *Globals) run(fn func(*app) error) error {
	a, err := openApp(g.ctx, g.options())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
