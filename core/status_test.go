package core

import (
	"context"
	"errors"
	"testing"
)

func newStatusService(t *testing.T, store CredentialStore, transport TransportAdapter) *Service {
	t.Helper()
	svc, err := NewService(testConfig(),
		WithLogger(stubLogger{}),
		WithCredentialStore(store),
		WithTransport(transport),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func authorizedStore() *memoryCredentialStore {
	store := newMemoryCredentialStore()
	store.consumer = &ConsumerCredential{Key: "CK", Secret: "CS"}
	store.access = &AccessToken{Key: "AT", Secret: "AS"}
	return store
}

func TestCheckStatus_Authorized(t *testing.T) {
	transport := newRecordingTransport(map[string]scriptedResponse{
		testProfileURL: {status: 200, body: `{"meta":{"status":200},"response":{"user":{"name":"alice","blogs":[]}}}`},
	})
	result, err := newStatusService(t, authorizedStore(), transport).CheckStatus(context.Background())
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if result.State != StatusAuthorized || result.Username != "alice" {
		t.Fatalf("expected authorized alice, got %#v", result)
	}
	params := headerParams(transport.calls()[0])
	if params[ParamConsumerKey] != "CK" || params[ParamToken] != "AT" {
		t.Fatalf("expected request signed with stored credentials, got %#v", params)
	}
}

func TestCheckStatus_Unauthorized(t *testing.T) {
	transport := newRecordingTransport(map[string]scriptedResponse{
		testProfileURL: {status: 401, body: `{"meta":{"status":401,"msg":"Not Authorized"}}`},
	})
	result, err := newStatusService(t, authorizedStore(), transport).CheckStatus(context.Background())
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if result.State != StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %#v", result)
	}
}

func TestCheckStatus_UnexpectedStatus(t *testing.T) {
	transport := newRecordingTransport(map[string]scriptedResponse{
		testProfileURL: {status: 500, body: "oops"},
	})
	result, err := newStatusService(t, authorizedStore(), transport).CheckStatus(context.Background())
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if result.State != StatusUnexpected || result.StatusCode != 500 {
		t.Fatalf("expected unexpected(500), got %#v", result)
	}
}

func TestCheckStatus_MissingUsernameIsProtocolError(t *testing.T) {
	transport := newRecordingTransport(map[string]scriptedResponse{
		testProfileURL: {status: 200, body: `{"response":{"user":{}}}`},
	})
	_, err := newStatusService(t, authorizedStore(), transport).CheckStatus(context.Background())
	if !IsTextCode(err, ErrorProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestCheckStatus_MissingCredentialsSkipsNetwork(t *testing.T) {
	transport := newRecordingTransport(nil)

	onlyConsumer := newMemoryCredentialStore()
	onlyConsumer.consumer = &ConsumerCredential{Key: "CK", Secret: "CS"}
	for name, store := range map[string]*memoryCredentialStore{
		"empty":         newMemoryCredentialStore(),
		"consumer only": onlyConsumer,
	} {
		_, err := newStatusService(t, store, transport).CheckStatus(context.Background())
		if !IsTextCode(err, ErrorCredentialsMissing) {
			t.Fatalf("%s: expected missing credentials, got %v", name, err)
		}
	}
	if len(transport.calls()) != 0 {
		t.Fatalf("expected no network calls")
	}
}

func TestCheckStatus_TransportFailure(t *testing.T) {
	transport := newRecordingTransport(map[string]scriptedResponse{
		testProfileURL: {err: errors.New("timeout")},
	})
	_, err := newStatusService(t, authorizedStore(), transport).CheckStatus(context.Background())
	if !IsTextCode(err, ErrorTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestCheckStatus_StoreFailureIsStorageError(t *testing.T) {
	store := authorizedStore()
	store.failRead = StorageError(errors.New("disk I/O error"), "read consumer")
	_, err := newStatusService(t, store, newRecordingTransport(nil)).CheckStatus(context.Background())
	if !IsTextCode(err, ErrorStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
