package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type memoryCredentialStore struct {
	mu       sync.Mutex
	consumer *ConsumerCredential
	access   *AccessToken
	writes   int
	failRead error
}

func newMemoryCredentialStore() *memoryCredentialStore {
	return &memoryCredentialStore{}
}

func (s *memoryCredentialStore) HasConsumer(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRead != nil {
		return false, s.failRead
	}
	return s.consumer != nil, nil
}

func (s *memoryCredentialStore) HasAccess(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRead != nil {
		return false, s.failRead
	}
	return s.access != nil, nil
}

func (s *memoryCredentialStore) GetConsumer(context.Context) (*ConsumerCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRead != nil {
		return nil, s.failRead
	}
	if s.consumer == nil {
		return nil, nil
	}
	current := *s.consumer
	return &current, nil
}

func (s *memoryCredentialStore) GetAccess(context.Context) (*AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRead != nil {
		return nil, s.failRead
	}
	if s.access == nil {
		return nil, nil
	}
	current := *s.access
	return &current, nil
}

func (s *memoryCredentialStore) SetConsumer(
	ctx context.Context,
	consumer ConsumerCredential,
	confirmer Confirmer,
) (SetConsumerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	check := OverwriteCheck{Kind: CredentialKindConsumer, Exists: s.consumer != nil}
	if s.consumer != nil {
		check.Identical = s.consumer.Equal(consumer)
	}
	decision, err := ResolveOverwrite(ctx, check, confirmer, "")
	if err != nil {
		return SetConsumerResult{}, err
	}
	switch decision {
	case OverwriteSkip:
		return SetConsumerResult{Outcome: SetConsumerUnchanged}, nil
	case OverwriteReplace:
		cleared := s.access != nil
		s.access = nil
		s.consumer = &consumer
		s.writes++
		return SetConsumerResult{Outcome: SetConsumerReplaced, AccessCleared: cleared}, nil
	default:
		s.consumer = &consumer
		s.writes++
		return SetConsumerResult{Outcome: SetConsumerInserted}, nil
	}
}

func (s *memoryCredentialStore) SetAccess(ctx context.Context, access AccessToken, confirmer Confirmer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := ResolveOverwrite(ctx, OverwriteCheck{
		Kind:   CredentialKindAccess,
		Exists: s.access != nil,
	}, confirmer, ""); err != nil {
		return err
	}
	s.access = &access
	s.writes++
	return nil
}

type scriptedResponse struct {
	status int
	body   string
	err    error
}

type recordingTransport struct {
	mu        sync.Mutex
	responses map[string]scriptedResponse
	requests  []TransportRequest
}

func newRecordingTransport(responses map[string]scriptedResponse) *recordingTransport {
	return &recordingTransport{responses: responses}
}

func (*recordingTransport) Kind() string { return "recording" }

func (t *recordingTransport) Do(_ context.Context, req TransportRequest) (TransportResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = append(t.requests, req)
	scripted, ok := t.responses[req.URL]
	if !ok {
		return TransportResponse{}, fmt.Errorf("recording transport: no response for %s", req.URL)
	}
	if scripted.err != nil {
		return TransportResponse{}, scripted.err
	}
	return TransportResponse{StatusCode: scripted.status, Body: []byte(scripted.body)}, nil
}

func (t *recordingTransport) calls() []TransportRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TransportRequest, len(t.requests))
	copy(out, t.requests)
	return out
}

type scriptedPrompt struct {
	verifier  string
	err       error
	presented []string
}

func (p *scriptedPrompt) Present(_ context.Context, authorizeURL string) error {
	p.presented = append(p.presented, authorizeURL)
	return nil
}

func (p *scriptedPrompt) AwaitVerifier(context.Context) (string, error) {
	return p.verifier, p.err
}

type recordingConfirmer struct {
	answer  bool
	prompts []string
}

func (c *recordingConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	return c.answer, nil
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

const (
	testRequestTokenURL = "https://api.example.com/oauth/request_token"
	testAuthorizeURL    = "https://api.example.com/oauth/authorize"
	testAccessTokenURL  = "https://api.example.com/oauth/access_token"
	testProfileURL      = "https://api.example.com/v2/user/info"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Endpoints = EndpointsConfig{
		RequestToken: testRequestTokenURL,
		Authorize:    testAuthorizeURL,
		AccessToken:  testAccessTokenURL,
		Profile:      testProfileURL,
	}
	return cfg
}

func fixedSigner() OAuth1Signer {
	return OAuth1Signer{
		Nonce: func() string { return "nonce" },
	}
}

func headerParams(req TransportRequest) map[string]string {
	params, err := ParseAuthorizationHeader(req.Headers["Authorization"])
	if err != nil {
		return map[string]string{"error": err.Error()}
	}
	return params
}

func containsAll(value string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(value, part) {
			return false
		}
	}
	return true
}
