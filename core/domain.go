package core

import (
	"strings"
)

// Credential is a key/secret pair issued by the remote API. The same shape is
// used for the consumer identity, the ephemeral request token and the
// long-lived access token.
type Credential struct {
	Key    string
	Secret string
}

type ConsumerCredential = Credential

type RequestToken = Credential

type AccessToken = Credential

func (c Credential) IsZero() bool {
	return strings.TrimSpace(c.Key) == "" && strings.TrimSpace(c.Secret) == ""
}

func (c Credential) Equal(other Credential) bool {
	return c.Key == other.Key && c.Secret == other.Secret
}

func (c Credential) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return newInputError("core: credential key is required")
	}
	if strings.TrimSpace(c.Secret) == "" {
		return newInputError("core: credential secret is required")
	}
	return nil
}

type CredentialKind string

const (
	CredentialKindConsumer CredentialKind = "consumer"
	CredentialKindAccess   CredentialKind = "access"
)

type SetConsumerOutcome string

const (
	SetConsumerInserted  SetConsumerOutcome = "inserted"
	SetConsumerUnchanged SetConsumerOutcome = "unchanged"
	SetConsumerReplaced  SetConsumerOutcome = "replaced"
)

type SetConsumerResult struct {
	Outcome SetConsumerOutcome
	// AccessCleared reports whether a stored access token was removed because
	// the consumer it was issued under changed.
	AccessCleared bool
}

type StatusState string

const (
	StatusAuthorized   StatusState = "authorized"
	StatusUnauthorized StatusState = "unauthorized"
	StatusUnexpected   StatusState = "unexpected"
)

type StatusResult struct {
	State      StatusState
	Username   string
	StatusCode int
}

func Authorized(username string) StatusResult {
	return StatusResult{State: StatusAuthorized, Username: username, StatusCode: 200}
}

func Unauthorized() StatusResult {
	return StatusResult{State: StatusUnauthorized, StatusCode: 401}
}

func Unexpected(statusCode int) StatusResult {
	return StatusResult{State: StatusUnexpected, StatusCode: statusCode}
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

func (r TransportResponse) Successful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
