package sqlstore

import "github.com/goliatone/go-oauth1/core"

var (
	_ core.CredentialStore = (*CredentialStore)(nil)
	_ core.CredentialStore = (*CachedCredentialReader)(nil)
	_ core.StoreFactory    = (*RepositoryFactory)(nil)
)
