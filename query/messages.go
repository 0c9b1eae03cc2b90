package query

const (
	TypeStatus             = "oauth1.query.status"
	TypeCredentialPresence = "oauth1.query.credentials.presence"
)

type StatusMessage struct{}

func (StatusMessage) Type() string { return TypeStatus }

func (StatusMessage) Validate() error { return nil }

type CredentialPresenceMessage struct{}

func (CredentialPresenceMessage) Type() string { return TypeCredentialPresence }

func (CredentialPresenceMessage) Validate() error { return nil }

// CredentialPresence reports which credentials are stored without exposing
// their values.
type CredentialPresence struct {
	Consumer bool
	Access   bool
}
