package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-oauth1/core"
)

var (
	_ gocmd.Querier[StatusMessage, core.StatusResult]              = (*StatusQuery)(nil)
	_ gocmd.Querier[CredentialPresenceMessage, CredentialPresence] = (*CredentialPresenceQuery)(nil)
)
