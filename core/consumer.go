package core

import (
	"context"
	"time"
)

// SetConsumer stores the application credential exactly as given. An
// identical credential is a no-op; a different one is replaced only after
// confirmation, and replacing it always drops the stored access token in the
// same transaction.
func (s *Service) SetConsumer(ctx context.Context, key string, secret string) (result SetConsumerResult, err error) {
	startedAt := time.Now().UTC()
	consumer := ConsumerCredential{Key: key, Secret: secret}
	defer func() {
		s.observeOperation(ctx, startedAt, "set_consumer", err, map[string]any{
			"key_hint":       KeyHint(consumer.Key),
			"outcome":        string(result.Outcome),
			"access_cleared": result.AccessCleared,
		})
	}()

	if err := consumer.Validate(); err != nil {
		return SetConsumerResult{}, s.mapError(err)
	}
	store, err := s.requireStore()
	if err != nil {
		return SetConsumerResult{}, s.mapError(err)
	}

	result, err = store.SetConsumer(ctx, consumer, s.confirmer)
	if err != nil {
		return SetConsumerResult{}, s.mapError(err)
	}
	return result, nil
}

// HasConsumer and HasAccess are existence probes passed through to the store.
func (s *Service) HasConsumer(ctx context.Context) (bool, error) {
	store, err := s.requireStore()
	if err != nil {
		return false, s.mapError(err)
	}
	ok, err := store.HasConsumer(ctx)
	return ok, s.mapError(err)
}

func (s *Service) HasAccess(ctx context.Context) (bool, error) {
	store, err := s.requireStore()
	if err != nil {
		return false, s.mapError(err)
	}
	ok, err := store.HasAccess(ctx)
	return ok, s.mapError(err)
}
