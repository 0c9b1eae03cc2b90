package sqlstore

import (
	"context"
	"fmt"

	"github.com/goliatone/go-oauth1/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const credentialCacheKeyPrefix = "go-oauth1::credential::v1"

type cachedCredential struct {
	Found      bool
	Credential core.Credential
}

// CachedCredentialReader serves reads from a cache and invalidates on every
// write. Writes always reach the base store.
type CachedCredentialReader struct {
	base  core.CredentialStore
	cache repositorycache.CacheService
}

func NewCachedCredentialReader(
	base core.CredentialStore,
	cacheService repositorycache.CacheService,
) (*CachedCredentialReader, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base credential store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: credential cache service is required")
	}
	return &CachedCredentialReader{base: base, cache: cacheService}, nil
}

// CredentialCacheKey returns go-oauth1::credential::v1::<kind>.
func CredentialCacheKey(kind core.CredentialKind) string {
	return credentialCacheKeyPrefix + "::" + string(kind)
}

func (s *CachedCredentialReader) HasConsumer(ctx context.Context) (bool, error) {
	entry, err := s.load(ctx, core.CredentialKindConsumer)
	if err != nil {
		return false, err
	}
	return entry.Found, nil
}

func (s *CachedCredentialReader) HasAccess(ctx context.Context) (bool, error) {
	entry, err := s.load(ctx, core.CredentialKindAccess)
	if err != nil {
		return false, err
	}
	return entry.Found, nil
}

func (s *CachedCredentialReader) GetConsumer(ctx context.Context) (*core.ConsumerCredential, error) {
	entry, err := s.load(ctx, core.CredentialKindConsumer)
	if err != nil || !entry.Found {
		return nil, err
	}
	consumer := entry.Credential
	return &consumer, nil
}

func (s *CachedCredentialReader) GetAccess(ctx context.Context) (*core.AccessToken, error) {
	entry, err := s.load(ctx, core.CredentialKindAccess)
	if err != nil || !entry.Found {
		return nil, err
	}
	access := entry.Credential
	return &access, nil
}

func (s *CachedCredentialReader) SetConsumer(
	ctx context.Context,
	consumer core.ConsumerCredential,
	confirmer core.Confirmer,
) (core.SetConsumerResult, error) {
	if err := s.ready(); err != nil {
		return core.SetConsumerResult{}, err
	}
	result, err := s.base.SetConsumer(ctx, consumer, confirmer)
	if err != nil {
		return core.SetConsumerResult{}, err
	}
	if err := s.invalidate(ctx, core.CredentialKindConsumer, core.CredentialKindAccess); err != nil {
		return core.SetConsumerResult{}, err
	}
	return result, nil
}

func (s *CachedCredentialReader) SetAccess(ctx context.Context, access core.AccessToken, confirmer core.Confirmer) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.base.SetAccess(ctx, access, confirmer); err != nil {
		return err
	}
	return s.invalidate(ctx, core.CredentialKindAccess)
}

func (s *CachedCredentialReader) load(ctx context.Context, kind core.CredentialKind) (cachedCredential, error) {
	if err := s.ready(); err != nil {
		return cachedCredential{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, CredentialCacheKey(kind), func(ctx context.Context) (cachedCredential, error) {
		var (
			credential *core.Credential
			err        error
		)
		switch kind {
		case core.CredentialKindConsumer:
			credential, err = s.base.GetConsumer(ctx)
		default:
			credential, err = s.base.GetAccess(ctx)
		}
		if err != nil {
			return cachedCredential{}, err
		}
		if credential == nil {
			return cachedCredential{}, nil
		}
		return cachedCredential{Found: true, Credential: *credential}, nil
	})
}

func (s *CachedCredentialReader) invalidate(ctx context.Context, kinds ...core.CredentialKind) error {
	for _, kind := range kinds {
		if err := s.cache.Delete(ctx, CredentialCacheKey(kind)); err != nil {
			return core.StorageError(err, "sqlstore: invalidate credential cache")
		}
	}
	return nil
}

func (s *CachedCredentialReader) ready() error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached credential reader is not configured")
	}
	return nil
}
