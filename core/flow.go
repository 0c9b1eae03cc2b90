package core

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type FlowState string

const (
	FlowRequestTokenPending      FlowState = "request_token_pending"
	FlowUserAuthorizationPending FlowState = "user_authorization_pending"
	FlowAccessTokenPending       FlowState = "access_token_pending"
	FlowAuthorized               FlowState = "authorized"
	FlowFailed                   FlowState = "failed"
)

// TokenExchangeFlow runs the three-legged handshake: request token, user
// authorization, access token. It never retries and never persists; the
// caller owns the terminal write.
type TokenExchangeFlow struct {
	Signer           OAuth1Signer
	Transport        TransportAdapter
	Prompt           VerifierPrompt
	Endpoints        EndpointsConfig
	Callback         string
	MaxResponseBytes int64

	// OnTransition observes state changes; optional.
	OnTransition func(from FlowState, to FlowState)

	state FlowState
}

func (f *TokenExchangeFlow) State() FlowState {
	if f == nil {
		return ""
	}
	return f.state
}

func (f *TokenExchangeFlow) Run(ctx context.Context, consumer ConsumerCredential) (AccessToken, error) {
	if f == nil || f.Transport == nil {
		return AccessToken{}, fmt.Errorf("core: flow transport is required")
	}
	if f.Prompt == nil {
		return AccessToken{}, fmt.Errorf("core: flow verifier prompt is required")
	}
	if err := consumer.Validate(); err != nil {
		return AccessToken{}, err
	}

	f.transition(FlowRequestTokenPending)
	var extra map[string]string
	if callback := strings.TrimSpace(f.Callback); callback != "" {
		extra = map[string]string{ParamCallback: callback}
	}
	requestToken, err := f.exchange(ctx, f.Endpoints.RequestToken, consumer, nil, extra)
	if err != nil {
		f.transition(FlowFailed)
		return AccessToken{}, err
	}

	f.transition(FlowUserAuthorizationPending)
	verifier, err := f.authorize(ctx, requestToken)
	if err != nil {
		f.transition(FlowFailed)
		return AccessToken{}, err
	}

	f.transition(FlowAccessTokenPending)
	access, err := f.exchange(ctx, f.Endpoints.AccessToken, consumer, &requestToken, map[string]string{
		ParamVerifier: verifier,
	})
	if err != nil {
		f.transition(FlowFailed)
		return AccessToken{}, err
	}

	f.transition(FlowAuthorized)
	return access, nil
}

func (f *TokenExchangeFlow) transition(next FlowState) {
	previous := f.state
	f.state = next
	if f.OnTransition != nil {
		f.OnTransition(previous, next)
	}
}

func (f *TokenExchangeFlow) authorize(ctx context.Context, requestToken RequestToken) (string, error) {
	authorizeURL, err := AuthorizeURL(f.Endpoints.Authorize, requestToken)
	if err != nil {
		return "", err
	}
	if err := f.Prompt.Present(ctx, authorizeURL); err != nil {
		return "", wrapInputError(err, "core: present authorization url")
	}
	verifier, err := f.Prompt.AwaitVerifier(ctx)
	if err != nil {
		return "", wrapInputError(err, "core: read verifier")
	}
	verifier = strings.TrimSpace(verifier)
	if verifier == "" {
		return "", newInputError("core: verifier is required")
	}
	return verifier, nil
}

func (f *TokenExchangeFlow) exchange(
	ctx context.Context,
	endpoint string,
	consumer ConsumerCredential,
	token *Credential,
	extra map[string]string,
) (Credential, error) {
	header, err := f.Signer.Sign(http.MethodGet, endpoint, consumer, token, extra)
	if err != nil {
		return Credential{}, err
	}
	res, err := f.Transport.Do(ctx, TransportRequest{
		Method:               http.MethodGet,
		URL:                  endpoint,
		Headers:              map[string]string{"Authorization": header},
		MaxResponseBodyBytes: f.MaxResponseBytes,
	})
	if err != nil {
		return Credential{}, wrapTransportError(err, "core: token endpoint request failed", map[string]any{
			"endpoint": endpoint,
		})
	}
	if !res.Successful() {
		return Credential{}, newTransportError(
			fmt.Sprintf("core: token endpoint returned status %d", res.StatusCode),
			map[string]any{"endpoint": endpoint, "status_code": res.StatusCode},
		)
	}
	return ParseTokenResponse(res.Body)
}

// ParseTokenResponse reads oauth_token and oauth_token_secret from an
// application/x-www-form-urlencoded body.
func ParseTokenResponse(body []byte) (Credential, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return Credential{}, wrapProtocolError(err, "core: malformed token response", nil)
	}
	key := values.Get(ParamToken)
	secret := values.Get(ParamTokenSecret)
	var missing []string
	if key == "" {
		missing = append(missing, ParamToken)
	}
	if secret == "" {
		missing = append(missing, ParamTokenSecret)
	}
	if len(missing) > 0 {
		return Credential{}, newProtocolError(
			"core: token response is missing "+strings.Join(missing, ", "),
			map[string]any{"missing": missing},
		)
	}
	return Credential{Key: key, Secret: secret}, nil
}

// AuthorizeURL appends oauth_token to the authorization endpoint.
func AuthorizeURL(endpoint string, requestToken RequestToken) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", newInputError(fmt.Sprintf("core: invalid authorize endpoint %q", endpoint))
	}
	query := parsed.Query()
	query.Set(ParamToken, requestToken.Key)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// Authorize runs the token exchange flow with the stored consumer and writes
// the resulting access token. An existing access token is confirmed for
// overwrite before any network call, but is only replaced once the new token
// has been issued.
func (s *Service) Authorize(ctx context.Context) (access AccessToken, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "authorize", err, fields)
	}()

	store, err := s.requireStore()
	if err != nil {
		return AccessToken{}, s.mapError(err)
	}
	transport, err := s.requireTransport()
	if err != nil {
		return AccessToken{}, s.mapError(err)
	}
	if s.verifierPrompt == nil {
		return AccessToken{}, s.mapError(newInputError("core: verifier prompt is required"))
	}

	consumer, err := store.GetConsumer(ctx)
	if err != nil {
		return AccessToken{}, s.mapError(err)
	}
	if consumer == nil {
		return AccessToken{}, s.mapError(newMissingCredentialsError(
			"core: consumer credential is not stored", CredentialKindConsumer,
		))
	}
	fields["key_hint"] = KeyHint(consumer.Key)

	exists, err := store.HasAccess(ctx)
	if err != nil {
		return AccessToken{}, s.mapError(err)
	}
	decision, err := ResolveOverwrite(ctx, OverwriteCheck{
		Kind:   CredentialKindAccess,
		Exists: exists,
	}, s.confirmer, "")
	if err != nil {
		return AccessToken{}, s.mapError(err)
	}
	fields["overwrite"] = string(decision)

	flow := &TokenExchangeFlow{
		Signer:           s.signer,
		Transport:        transport,
		Prompt:           s.verifierPrompt,
		Endpoints:        s.config.Endpoints,
		Callback:         s.config.OAuth.Callback,
		MaxResponseBytes: s.config.HTTP.MaxResponseBytes,
		OnTransition: func(from FlowState, to FlowState) {
			s.logDebug(ctx, "authorization flow transition", map[string]any{
				"from": string(from),
				"to":   string(to),
			})
		},
	}
	access, err = flow.Run(ctx, *consumer)
	fields["flow_state"] = string(flow.State())
	if err != nil {
		return AccessToken{}, s.mapError(err)
	}

	if err := store.SetAccess(ctx, access, Preconfirmed(decision == OverwriteReplace)); err != nil {
		return AccessToken{}, s.mapError(err)
	}
	return access, nil
}
