package core

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CheckStatus signs a profile request with the stored credentials and
// classifies the response. No request is sent unless both the consumer and
// the access credential are stored.
func (s *Service) CheckStatus(ctx context.Context) (result StatusResult, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observeOperation(ctx, startedAt, "status", err, map[string]any{
			"state":       string(result.State),
			"status_code": result.StatusCode,
		})
	}()

	store, err := s.requireStore()
	if err != nil {
		return StatusResult{}, s.mapError(err)
	}
	consumer, err := store.GetConsumer(ctx)
	if err != nil {
		return StatusResult{}, s.mapError(err)
	}
	if consumer == nil {
		return StatusResult{}, s.mapError(newMissingCredentialsError(
			"core: consumer credential is not stored", CredentialKindConsumer,
		))
	}
	access, err := store.GetAccess(ctx)
	if err != nil {
		return StatusResult{}, s.mapError(err)
	}
	if access == nil {
		return StatusResult{}, s.mapError(newMissingCredentialsError(
			"core: access token is not stored", CredentialKindAccess,
		))
	}

	transport, err := s.requireTransport()
	if err != nil {
		return StatusResult{}, s.mapError(err)
	}
	endpoint := s.config.Endpoints.Profile
	header, err := s.signer.Sign(http.MethodGet, endpoint, *consumer, access, nil)
	if err != nil {
		return StatusResult{}, s.mapError(err)
	}
	res, err := transport.Do(ctx, TransportRequest{
		Method:               http.MethodGet,
		URL:                  endpoint,
		Headers:              map[string]string{"Authorization": header},
		MaxResponseBodyBytes: s.config.HTTP.MaxResponseBytes,
	})
	if err != nil {
		return StatusResult{}, s.mapError(wrapTransportError(err, "core: profile request failed", map[string]any{
			"endpoint": endpoint,
		}))
	}

	result, err = ClassifyProfileResponse(res, s.jsonAccessor)
	if err != nil {
		return StatusResult{}, s.mapError(err)
	}
	return result, nil
}

// ClassifyProfileResponse maps 200 to Authorized (username required), 401 to
// Unauthorized and anything else to Unexpected.
func ClassifyProfileResponse(res TransportResponse, accessor JSONAccessor) (StatusResult, error) {
	switch res.StatusCode {
	case http.StatusOK:
		if accessor == nil {
			accessor = JSONPathAccessor{}
		}
		username, ok := accessor.GetString(res.Body, profileUsernamePath...)
		if !ok || username == "" {
			return StatusResult{}, newProtocolError(
				fmt.Sprintf("core: profile response has no %s field", "response.user.name"),
				map[string]any{"status_code": res.StatusCode},
			)
		}
		return Authorized(username), nil
	case http.StatusUnauthorized:
		return Unauthorized(), nil
	default:
		return Unexpected(res.StatusCode), nil
	}
}
