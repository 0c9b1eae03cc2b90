package core

import (
	"context"
)

type OverwriteDecision string

const (
	OverwriteInsert  OverwriteDecision = "insert"
	OverwriteSkip    OverwriteDecision = "skip"
	OverwriteReplace OverwriteDecision = "replace"
)

// OverwriteCheck describes the stored state a write is about to touch.
type OverwriteCheck struct {
	Kind      CredentialKind
	Exists    bool
	Identical bool
}

// ResolveOverwrite is the single policy every credential write goes through:
// nothing stored inserts, an identical row is skipped, anything else needs an
// explicit confirmation before it is replaced.
func ResolveOverwrite(ctx context.Context, check OverwriteCheck, confirmer Confirmer, prompt string) (OverwriteDecision, error) {
	if !check.Exists {
		return OverwriteInsert, nil
	}
	if check.Identical {
		return OverwriteSkip, nil
	}
	if confirmer == nil {
		return "", OverwriteDeclinedError(check.Kind)
	}
	if prompt == "" {
		prompt = OverwritePrompt(check.Kind)
	}
	ok, err := confirmer.Confirm(ctx, prompt)
	if err != nil {
		return "", wrapInputError(err, "core: overwrite confirmation failed")
	}
	if !ok {
		return "", OverwriteDeclinedError(check.Kind)
	}
	return OverwriteReplace, nil
}

func OverwritePrompt(kind CredentialKind) string {
	switch kind {
	case CredentialKindConsumer:
		return "This will overwrite the existing consumer key and secret and erase any stored access token."
	case CredentialKindAccess:
		return "An access token is already stored. Proceeding will overwrite it."
	default:
		return "This will overwrite a stored credential."
	}
}
