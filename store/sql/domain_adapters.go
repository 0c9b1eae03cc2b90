package sqlstore

import (
	"time"

	"github.com/goliatone/go-oauth1/core"
	"github.com/google/uuid"
)

func newConsumerRecord(consumer core.ConsumerCredential, now time.Time) *consumerRecord {
	return &consumerRecord{
		ID:        uuid.NewString(),
		Slot:      1,
		Key:       consumer.Key,
		Secret:    consumer.Secret,
		CreatedAt: now,
	}
}

func newAccessRecord(access core.AccessToken, consumerID string, now time.Time) *accessRecord {
	return &accessRecord{
		ID:         uuid.NewString(),
		Slot:       1,
		ConsumerID: consumerID,
		Key:        access.Key,
		Secret:     access.Secret,
		CreatedAt:  now,
	}
}

func (r *consumerRecord) toDomain() core.ConsumerCredential {
	if r == nil {
		return core.ConsumerCredential{}
	}
	return core.ConsumerCredential{Key: r.Key, Secret: r.Secret}
}

func (r *accessRecord) toDomain() core.AccessToken {
	if r == nil {
		return core.AccessToken{}
	}
	return core.AccessToken{Key: r.Key, Secret: r.Secret}
}
