package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-oauth1/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// CredentialStore keeps the consumer and access credentials in two
// single-row tables. Every mutation runs the overwrite policy and the write
// inside one transaction.
type CredentialStore struct {
	db           *bun.DB
	consumerRepo repository.Repository[*consumerRecord]
	accessRepo   repository.Repository[*accessRecord]
	now          func() time.Time
}

func NewCredentialStore(db *bun.DB) (*CredentialStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	consumerRepo := repository.NewRepository[*consumerRecord](db, consumerHandlers())
	if validator, ok := consumerRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid consumer repository wiring: %w", err)
		}
	}
	accessRepo := repository.NewRepository[*accessRecord](db, accessHandlers())
	if validator, ok := accessRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid access repository wiring: %w", err)
		}
	}
	return &CredentialStore{
		db:           db,
		consumerRepo: consumerRepo,
		accessRepo:   accessRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *CredentialStore) HasConsumer(ctx context.Context) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	exists, err := s.db.NewSelect().Model((*consumerRecord)(nil)).Exists(ctx)
	if err != nil {
		return false, core.StorageError(err, "sqlstore: check consumer")
	}
	return exists, nil
}

func (s *CredentialStore) HasAccess(ctx context.Context) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	exists, err := s.db.NewSelect().Model((*accessRecord)(nil)).Exists(ctx)
	if err != nil {
		return false, core.StorageError(err, "sqlstore: check access")
	}
	return exists, nil
}

func (s *CredentialStore) GetConsumer(ctx context.Context) (*core.ConsumerCredential, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	records, _, err := s.consumerRepo.List(ctx,
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, core.StorageError(err, "sqlstore: read consumer")
	}
	if len(records) == 0 {
		return nil, nil
	}
	consumer := records[0].toDomain()
	return &consumer, nil
}

func (s *CredentialStore) GetAccess(ctx context.Context) (*core.AccessToken, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	records, _, err := s.accessRepo.List(ctx,
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, core.StorageError(err, "sqlstore: read access")
	}
	if len(records) == 0 {
		return nil, nil
	}
	access := records[0].toDomain()
	return &access, nil
}

// SetConsumer stores consumer. Replacing a different consumer deletes the
// access token first, since it was issued under the old identity.
func (s *CredentialStore) SetConsumer(
	ctx context.Context,
	consumer core.ConsumerCredential,
	confirmer core.Confirmer,
) (core.SetConsumerResult, error) {
	if err := s.ready(); err != nil {
		return core.SetConsumerResult{}, err
	}
	if err := consumer.Validate(); err != nil {
		return core.SetConsumerResult{}, err
	}

	var result core.SetConsumerResult
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := selectConsumerTx(ctx, tx)
		if err != nil {
			return err
		}
		check := core.OverwriteCheck{Kind: core.CredentialKindConsumer, Exists: current != nil}
		if current != nil {
			check.Identical = current.toDomain().Equal(consumer)
		}
		decision, err := core.ResolveOverwrite(ctx, check, confirmer, "")
		if err != nil {
			return err
		}

		switch decision {
		case core.OverwriteSkip:
			result = core.SetConsumerResult{Outcome: core.SetConsumerUnchanged}
			return nil
		case core.OverwriteReplace:
			cleared, err := deleteAllTx(ctx, tx, (*accessRecord)(nil))
			if err != nil {
				return err
			}
			if _, err := deleteAllTx(ctx, tx, (*consumerRecord)(nil)); err != nil {
				return err
			}
			result = core.SetConsumerResult{Outcome: core.SetConsumerReplaced, AccessCleared: cleared > 0}
		default:
			result = core.SetConsumerResult{Outcome: core.SetConsumerInserted}
		}

		_, err = s.consumerRepo.CreateTx(ctx, tx, newConsumerRecord(consumer, s.now()))
		return err
	})
	if err != nil {
		return core.SetConsumerResult{}, core.StorageError(err, "sqlstore: set consumer")
	}
	return result, nil
}

// SetAccess stores the access token issued under the current consumer.
func (s *CredentialStore) SetAccess(ctx context.Context, access core.AccessToken, confirmer core.Confirmer) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := access.Validate(); err != nil {
		return err
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		consumer, err := selectConsumerTx(ctx, tx)
		if err != nil {
			return err
		}
		if consumer == nil {
			return core.MissingCredentialsError(core.CredentialKindConsumer)
		}
		current, err := selectAccessTx(ctx, tx)
		if err != nil {
			return err
		}
		check := core.OverwriteCheck{Kind: core.CredentialKindAccess, Exists: current != nil}
		if current != nil {
			check.Identical = current.toDomain().Equal(access)
		}
		decision, err := core.ResolveOverwrite(ctx, check, confirmer, "")
		if err != nil {
			return err
		}
		switch decision {
		case core.OverwriteSkip:
			return nil
		case core.OverwriteReplace:
			if _, err := deleteAllTx(ctx, tx, (*accessRecord)(nil)); err != nil {
				return err
			}
		}
		_, err = s.accessRepo.CreateTx(ctx, tx, newAccessRecord(access, consumer.ID, s.now()))
		return err
	})
	if err != nil {
		return core.StorageError(err, "sqlstore: set access")
	}
	return nil
}

func (s *CredentialStore) ready() error {
	if s == nil || s.db == nil || s.consumerRepo == nil || s.accessRepo == nil {
		return core.StorageError(fmt.Errorf("sqlstore: credential store is not configured"), "sqlstore: store unavailable")
	}
	return nil
}

func selectConsumerTx(ctx context.Context, tx bun.Tx) (*consumerRecord, error) {
	record := &consumerRecord{}
	err := tx.NewSelect().Model(record).OrderExpr("created_at DESC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func selectAccessTx(ctx context.Context, tx bun.Tx) (*accessRecord, error) {
	record := &accessRecord{}
	err := tx.NewSelect().Model(record).OrderExpr("created_at DESC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func deleteAllTx(ctx context.Context, tx bun.Tx, model any) (int64, error) {
	res, err := tx.NewDelete().Model(model).Where("1 = 1").Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}
