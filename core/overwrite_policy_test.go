package core

import (
	"context"
	"errors"
	"testing"
)

func TestResolveOverwrite_Decisions(t *testing.T) {
	ctx := context.Background()

	decision, err := ResolveOverwrite(ctx, OverwriteCheck{Kind: CredentialKindConsumer}, nil, "")
	if err != nil || decision != OverwriteInsert {
		t.Fatalf("expected insert for empty slot, got %q %v", decision, err)
	}

	confirmer := &recordingConfirmer{answer: true}
	decision, err = ResolveOverwrite(ctx, OverwriteCheck{Kind: CredentialKindConsumer, Exists: true, Identical: true}, confirmer, "")
	if err != nil || decision != OverwriteSkip {
		t.Fatalf("expected skip for identical value, got %q %v", decision, err)
	}
	if len(confirmer.prompts) != 0 {
		t.Fatalf("expected no prompt for identical value")
	}

	decision, err = ResolveOverwrite(ctx, OverwriteCheck{Kind: CredentialKindAccess, Exists: true}, confirmer, "")
	if err != nil || decision != OverwriteReplace {
		t.Fatalf("expected replace after confirmation, got %q %v", decision, err)
	}
	if len(confirmer.prompts) != 1 || confirmer.prompts[0] != OverwritePrompt(CredentialKindAccess) {
		t.Fatalf("expected default access prompt, got %#v", confirmer.prompts)
	}
}

func TestResolveOverwrite_DeclineAndMissingConfirmer(t *testing.T) {
	ctx := context.Background()
	check := OverwriteCheck{Kind: CredentialKindConsumer, Exists: true}

	if _, err := ResolveOverwrite(ctx, check, &recordingConfirmer{answer: false}, ""); !IsTextCode(err, ErrorOverwriteDeclined) {
		t.Fatalf("expected declined error, got %v", err)
	}
	if _, err := ResolveOverwrite(ctx, check, nil, ""); !IsTextCode(err, ErrorOverwriteDeclined) {
		t.Fatalf("expected declined error without confirmer, got %v", err)
	}

	failing := ConfirmerFunc(func(context.Context, string) (bool, error) {
		return false, errors.New("stdin closed")
	})
	if _, err := ResolveOverwrite(ctx, check, failing, ""); !IsTextCode(err, ErrorInputRequired) {
		t.Fatalf("expected input error when confirmation cannot be read, got %v", err)
	}
}

func TestResolveOverwrite_Preconfirmed(t *testing.T) {
	decision, err := ResolveOverwrite(context.Background(), OverwriteCheck{
		Kind:   CredentialKindAccess,
		Exists: true,
	}, Preconfirmed(true), "custom")
	if err != nil || decision != OverwriteReplace {
		t.Fatalf("expected preconfirmed replace, got %q %v", decision, err)
	}
}
