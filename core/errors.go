package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorTransport          = "OAUTH_TRANSPORT_FAILED"
	ErrorProtocol           = "OAUTH_PROTOCOL_ERROR"
	ErrorInputRequired      = "OAUTH_INPUT_REQUIRED"
	ErrorStorage            = "OAUTH_STORAGE_FAILURE"
	ErrorCredentialsMissing = "OAUTH_CREDENTIALS_MISSING"
	ErrorOverwriteDeclined  = "OAUTH_OVERWRITE_DECLINED"
	ErrorInternal           = "OAUTH_INTERNAL_ERROR"
)

func newTransportError(message string, metadata map[string]any) *goerrors.Error {
	return newOAuthError(message, goerrors.CategoryExternal, ErrorTransport, metadata)
}

func wrapTransportError(source error, message string, metadata map[string]any) *goerrors.Error {
	return wrapOAuthError(source, goerrors.CategoryExternal, ErrorTransport, message, metadata)
}

func newProtocolError(message string, metadata map[string]any) *goerrors.Error {
	return newOAuthError(message, goerrors.CategoryOperation, ErrorProtocol, metadata)
}

func wrapProtocolError(source error, message string, metadata map[string]any) *goerrors.Error {
	return wrapOAuthError(source, goerrors.CategoryOperation, ErrorProtocol, message, metadata)
}

func newInputError(message string) *goerrors.Error {
	return newOAuthError(message, goerrors.CategoryBadInput, ErrorInputRequired, nil)
}

func wrapInputError(source error, message string) *goerrors.Error {
	return wrapOAuthError(source, goerrors.CategoryBadInput, ErrorInputRequired, message, nil)
}

func newMissingCredentialsError(message string, kind CredentialKind) *goerrors.Error {
	return newOAuthError(message, goerrors.CategoryNotFound, ErrorCredentialsMissing, map[string]any{
		"credential": string(kind),
	})
}

func newOverwriteDeclinedError(message string, kind CredentialKind) *goerrors.Error {
	return newOAuthError(message, goerrors.CategoryConflict, ErrorOverwriteDeclined, map[string]any{
		"credential": string(kind),
	})
}

// StorageError wraps a persistence failure. Store implementations use it so
// callers see one taxonomy regardless of the backing engine.
func StorageError(source error, message string) error {
	if source == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(source, &richErr) && richErr.Category != goerrors.CategoryInternal {
		return richErr
	}
	return wrapOAuthError(source, goerrors.CategoryInternal, ErrorStorage, message, nil)
}

// OverwriteDeclinedError is returned by stores when the confirmer refuses a
// destructive replace.
func OverwriteDeclinedError(kind CredentialKind) error {
	return newOverwriteDeclinedError("core: overwrite of stored "+string(kind)+" credential declined", kind)
}

// MissingCredentialsError reports that a credential a step depends on has not
// been stored yet.
func MissingCredentialsError(kind CredentialKind) error {
	return newMissingCredentialsError("core: "+string(kind)+" credential is not stored", kind)
}

func newOAuthError(message string, category goerrors.Category, textCode string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(oauthHTTPStatus(category)).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func wrapOAuthError(
	source error,
	category goerrors.Category,
	textCode string,
	message string,
	metadata map[string]any,
) *goerrors.Error {
	if source == nil {
		return newOAuthError(message, category, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(oauthHTTPStatus(category)).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// MapError normalizes any error into the taxonomy. Rich errors pass through.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "declined"):
		return newOAuthError(err.Error(), goerrors.CategoryConflict, ErrorOverwriteDeclined, nil)
	case strings.Contains(msg, "not stored"), strings.Contains(msg, "missing credential"):
		return newOAuthError(err.Error(), goerrors.CategoryNotFound, ErrorCredentialsMissing, nil)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newOAuthError(err.Error(), goerrors.CategoryBadInput, ErrorInputRequired, nil)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

// IsTextCode reports whether err carries the given taxonomy text code.
func IsTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == textCode
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = oauthHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorInputRequired
	case goerrors.CategoryNotFound:
		return ErrorCredentialsMissing
	case goerrors.CategoryConflict:
		return ErrorOverwriteDeclined
	case goerrors.CategoryExternal:
		return ErrorTransport
	case goerrors.CategoryOperation:
		return ErrorProtocol
	default:
		return ErrorInternal
	}
}

func oauthHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal, goerrors.CategoryOperation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
