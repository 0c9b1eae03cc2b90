package core

import (
	"context"
	"errors"
	"net/url"
	"testing"
)

func newFlowService(t *testing.T, store CredentialStore, transport TransportAdapter, prompt VerifierPrompt, confirmer Confirmer) *Service {
	t.Helper()
	svc, err := NewService(testConfig(),
		WithLogger(stubLogger{}),
		WithLoggerProvider(stubLoggerProvider{logger: stubLogger{}}),
		WithCredentialStore(store),
		WithTransport(transport),
		WithVerifierPrompt(prompt),
		WithConfirmer(confirmer),
		WithSigner(fixedSigner()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestAuthorize_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newMemoryCredentialStore()
	store.consumer = &ConsumerCredential{Key: "CK", Secret: "CS"}
	transport := newRecordingTransport(map[string]scriptedResponse{
		testRequestTokenURL: {status: 200, body: "oauth_token=RT&oauth_token_secret=RS&oauth_callback_confirmed=true"},
		testAccessTokenURL:  {status: 200, body: "oauth_token=AT&oauth_token_secret=AS"},
	})
	prompt := &scriptedPrompt{verifier: " V123 \n"}

	svc := newFlowService(t, store, transport, prompt, nil)
	access, err := svc.Authorize(ctx)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if access.Key != "AT" || access.Secret != "AS" {
		t.Fatalf("unexpected access token %#v", access)
	}
	if store.access == nil || store.access.Key != "AT" || store.access.Secret != "AS" {
		t.Fatalf("expected access token persisted, got %#v", store.access)
	}

	if len(prompt.presented) != 1 {
		t.Fatalf("expected one authorize url, got %d", len(prompt.presented))
	}
	presented, err := url.Parse(prompt.presented[0])
	if err != nil {
		t.Fatalf("parse authorize url: %v", err)
	}
	if presented.Query().Get("oauth_token") != "RT" {
		t.Fatalf("expected request token in authorize url, got %q", prompt.presented[0])
	}

	calls := transport.calls()
	if len(calls) != 2 {
		t.Fatalf("expected two token requests, got %d", len(calls))
	}
	first := headerParams(calls[0])
	if first[ParamConsumerKey] != "CK" {
		t.Fatalf("expected consumer key on request-token step, got %#v", first)
	}
	if _, ok := first[ParamToken]; ok {
		t.Fatalf("expected no oauth_token on request-token step")
	}
	second := headerParams(calls[1])
	if second[ParamToken] != "RT" || second[ParamVerifier] != "V123" {
		t.Fatalf("expected request token and trimmed verifier on access step, got %#v", second)
	}
}

func TestAuthorize_MissingTokenSecretIsProtocolError(t *testing.T) {
	store := newMemoryCredentialStore()
	store.consumer = &ConsumerCredential{Key: "CK", Secret: "CS"}
	transport := newRecordingTransport(map[string]scriptedResponse{
		testRequestTokenURL: {status: 200, body: "oauth_token=RT"},
	})
	prompt := &scriptedPrompt{verifier: "V123"}

	svc := newFlowService(t, store, transport, prompt, nil)
	_, err := svc.Authorize(context.Background())
	if !IsTextCode(err, ErrorProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
	if len(prompt.presented) != 0 {
		t.Fatalf("expected no user interaction after protocol error")
	}
	if store.writes != 0 || store.access != nil {
		t.Fatalf("expected store untouched, writes=%d", store.writes)
	}
}

func TestAuthorize_NonSuccessStatusIsTransportError(t *testing.T) {
	store := newMemoryCredentialStore()
	store.consumer = &ConsumerCredential{Key: "CK", Secret: "CS"}
	transport := newRecordingTransport(map[string]scriptedResponse{
		testRequestTokenURL: {status: 200, body: "oauth_token=RT&oauth_token_secret=RS"},
		testAccessTokenURL:  {status: 401, body: "oauth_problem=verifier_invalid"},
	})

	svc := newFlowService(t, store, transport, &scriptedPrompt{verifier: "bad"}, nil)
	_, err := svc.Authorize(context.Background())
	if !IsTextCode(err, ErrorTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if store.access != nil {
		t.Fatalf("expected no access token written")
	}
}

func TestAuthorize_NetworkFailureIsTransportError(t *testing.T) {
	store := newMemoryCredentialStore()
	store.consumer = &ConsumerCredential{Key: "CK", Secret: "CS"}
	transport := newRecordingTransport(map[string]scriptedResponse{
		testRequestTokenURL: {err: errors.New("dial tcp: connection refused")},
	})

	svc := newFlowService(t, store, transport, &scriptedPrompt{verifier: "V"}, nil)
	if _, err := svc.Authorize(context.Background()); !IsTextCode(err, ErrorTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestAuthorize_EmptyVerifierIsInputError(t *testing.T) {
	store := newMemoryCredentialStore()
	store.consumer = &ConsumerCredential{Key: "CK", Secret: "CS"}
	transport := newRecordingTransport(map[string]scriptedResponse{
		testRequestTokenURL: {status: 200, body: "oauth_token=RT&oauth_token_secret=RS"},
	})

	svc := newFlowService(t, store, transport, &scriptedPrompt{verifier: "   "}, nil)
	if _, err := svc.Authorize(context.Background()); !IsTextCode(err, ErrorInputRequired) {
		t.Fatalf("expected input error, got %v", err)
	}
	if got := len(transport.calls()); got != 1 {
		t.Fatalf("expected access-token step to be skipped, got %d calls", got)
	}
}

func TestAuthorize_WithoutConsumerFailsBeforeNetwork(t *testing.T) {
	transport := newRecordingTransport(nil)
	svc := newFlowService(t, newMemoryCredentialStore(), transport, &scriptedPrompt{}, nil)
	if _, err := svc.Authorize(context.Background()); !IsTextCode(err, ErrorCredentialsMissing) {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
	if len(transport.calls()) != 0 {
		t.Fatalf("expected no network calls")
	}
}

func TestAuthorize_DeclinedOverwriteAbortsBeforeNetwork(t *testing.T) {
	store := newMemoryCredentialStore()
	store.consumer = &ConsumerCredential{Key: "CK", Secret: "CS"}
	store.access = &AccessToken{Key: "OLD", Secret: "OLDS"}
	transport := newRecordingTransport(nil)
	confirmer := &recordingConfirmer{answer: false}

	svc := newFlowService(t, store, transport, &scriptedPrompt{verifier: "V"}, confirmer)
	if _, err := svc.Authorize(context.Background()); !IsTextCode(err, ErrorOverwriteDeclined) {
		t.Fatalf("expected overwrite declined, got %v", err)
	}
	if len(confirmer.prompts) != 1 {
		t.Fatalf("expected one confirmation prompt, got %d", len(confirmer.prompts))
	}
	if len(transport.calls()) != 0 {
		t.Fatalf("expected no network calls after decline")
	}
	if store.access.Key != "OLD" {
		t.Fatalf("expected existing token preserved")
	}
}

func TestAuthorize_ConfirmedOverwriteKeepsOldTokenUntilExchangeSucceeds(t *testing.T) {
	store := newMemoryCredentialStore()
	store.consumer = &ConsumerCredential{Key: "CK", Secret: "CS"}
	store.access = &AccessToken{Key: "OLD", Secret: "OLDS"}
	failing := newRecordingTransport(map[string]scriptedResponse{
		testRequestTokenURL: {status: 500, body: "boom"},
	})
	confirmer := &recordingConfirmer{answer: true}

	svc := newFlowService(t, store, failing, &scriptedPrompt{verifier: "V"}, confirmer)
	if _, err := svc.Authorize(context.Background()); err == nil {
		t.Fatalf("expected failure from request-token step")
	}
	if store.access.Key != "OLD" {
		t.Fatalf("expected old token to survive a failed exchange")
	}

	working := newRecordingTransport(map[string]scriptedResponse{
		testRequestTokenURL: {status: 200, body: "oauth_token=RT&oauth_token_secret=RS"},
		testAccessTokenURL:  {status: 200, body: "oauth_token=AT&oauth_token_secret=AS"},
	})
	svc = newFlowService(t, store, working, &scriptedPrompt{verifier: "V"}, confirmer)
	if _, err := svc.Authorize(context.Background()); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if store.access.Key != "AT" {
		t.Fatalf("expected token replaced, got %#v", store.access)
	}
}

func TestAuthorize_SendsCallbackWhenConfigured(t *testing.T) {
	store := newMemoryCredentialStore()
	store.consumer = &ConsumerCredential{Key: "CK", Secret: "CS"}
	transport := newRecordingTransport(map[string]scriptedResponse{
		testRequestTokenURL: {status: 200, body: "oauth_token=RT&oauth_token_secret=RS"},
		testAccessTokenURL:  {status: 200, body: "oauth_token=AT&oauth_token_secret=AS"},
	})
	cfg := testConfig()
	cfg.OAuth.Callback = "oob"
	svc, err := NewService(cfg,
		WithLogger(stubLogger{}),
		WithCredentialStore(store),
		WithTransport(transport),
		WithVerifierPrompt(&scriptedPrompt{verifier: "V"}),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.Authorize(context.Background()); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if got := headerParams(transport.calls()[0])[ParamCallback]; got != "oob" {
		t.Fatalf("expected oauth_callback=oob, got %q", got)
	}
}

func TestTokenExchangeFlow_TracksStates(t *testing.T) {
	transport := newRecordingTransport(map[string]scriptedResponse{
		testRequestTokenURL: {status: 200, body: "oauth_token=RT&oauth_token_secret=RS"},
		testAccessTokenURL:  {status: 200, body: "oauth_token=AT&oauth_token_secret=AS"},
	})
	var seen []FlowState
	flow := &TokenExchangeFlow{
		Signer:    fixedSigner(),
		Transport: transport,
		Prompt:    &scriptedPrompt{verifier: "V"},
		Endpoints: testConfig().Endpoints,
		OnTransition: func(_ FlowState, to FlowState) {
			seen = append(seen, to)
		},
	}
	if _, err := flow.Run(context.Background(), ConsumerCredential{Key: "CK", Secret: "CS"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []FlowState{
		FlowRequestTokenPending,
		FlowUserAuthorizationPending,
		FlowAccessTokenPending,
		FlowAuthorized,
	}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestParseTokenResponse(t *testing.T) {
	cred, err := ParseTokenResponse([]byte("oauth_token=a%20b&oauth_token_secret=s&extra=1"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cred.Key != "a b" || cred.Secret != "s" {
		t.Fatalf("unexpected credential %#v", cred)
	}
	if _, err := ParseTokenResponse([]byte("oauth_token_secret=s")); !IsTextCode(err, ErrorProtocol) {
		t.Fatalf("expected protocol error for missing token, got %v", err)
	}
	if _, err := ParseTokenResponse([]byte("oauth_token=&oauth_token_secret=")); !IsTextCode(err, ErrorProtocol) {
		t.Fatalf("expected protocol error for empty values, got %v", err)
	}
}

func TestAuthorizeURL_PreservesExistingQuery(t *testing.T) {
	got, err := AuthorizeURL("https://api.example.com/oauth/authorize?lang=en", RequestToken{Key: "RT"})
	if err != nil {
		t.Fatalf("authorize url: %v", err)
	}
	if !containsAll(got, "lang=en", "oauth_token=RT") {
		t.Fatalf("unexpected authorize url %q", got)
	}
	if _, err := AuthorizeURL("not a url", RequestToken{Key: "RT"}); !IsTextCode(err, ErrorInputRequired) {
		t.Fatalf("expected input error, got %v", err)
	}
}
