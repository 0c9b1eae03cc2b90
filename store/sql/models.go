package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type consumerRecord struct {
	bun.BaseModel `bun:"table:consumer,alias:c"`

	ID        string    `bun:"id,pk"`
	Slot      int       `bun:"slot,notnull,default:1"`
	Key       string    `bun:"key,notnull"`
	Secret    string    `bun:"secret,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type accessRecord struct {
	bun.BaseModel `bun:"table:access,alias:a"`

	ID         string    `bun:"id,pk"`
	Slot       int       `bun:"slot,notnull,default:1"`
	ConsumerID string    `bun:"consumer_id,notnull"`
	Key        string    `bun:"key,notnull"`
	Secret     string    `bun:"secret,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
