package query

import (
	"context"

	"github.com/goliatone/go-oauth1/core"
)

type StatusChecker interface {
	CheckStatus(ctx context.Context) (core.StatusResult, error)
}

type CredentialPresenceReader interface {
	HasConsumer(ctx context.Context) (bool, error)
	HasAccess(ctx context.Context) (bool, error)
}

type StatusQuery struct {
	checker StatusChecker
}

func NewStatusQuery(checker StatusChecker) *StatusQuery {
	return &StatusQuery{checker: checker}
}

func (q *StatusQuery) Query(ctx context.Context, _ StatusMessage) (core.StatusResult, error) {
	if q == nil || q.checker == nil {
		return core.StatusResult{}, queryDependencyError("query: status checker is required")
	}
	return q.checker.CheckStatus(ctx)
}

type CredentialPresenceQuery struct {
	reader CredentialPresenceReader
}

func NewCredentialPresenceQuery(reader CredentialPresenceReader) *CredentialPresenceQuery {
	return &CredentialPresenceQuery{reader: reader}
}

func (q *CredentialPresenceQuery) Query(ctx context.Context, _ CredentialPresenceMessage) (CredentialPresence, error) {
	if q == nil || q.reader == nil {
		return CredentialPresence{}, queryDependencyError("query: credential reader is required")
	}
	consumer, err := q.reader.HasConsumer(ctx)
	if err != nil {
		return CredentialPresence{}, err
	}
	access, err := q.reader.HasAccess(ctx)
	if err != nil {
		return CredentialPresence{}, err
	}
	return CredentialPresence{Consumer: consumer, Access: access}, nil
}
