// Package interaction provides terminal implementations of the verifier
// prompt and the overwrite confirmer.
package interaction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-oauth1/core"
)

const (
	presentFormat  = "Go to this URL: %s\n"
	verifierPrompt = "Enter verifier code: "
)

// lineReader serializes reads so the prompt and the confirmer can share one
// input stream without losing buffered bytes.
type lineReader struct {
	mu     sync.Mutex
	reader *bufio.Reader
}

func newLineReader(in io.Reader) *lineReader {
	return &lineReader{reader: bufio.NewReader(in)}
}

func (r *lineReader) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	line, err := r.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "interaction: read input").
			WithTextCode(core.ErrorInputRequired)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Terminal is the interactive console. One Terminal should own stdin for the
// process lifetime.
type Terminal struct {
	in  *lineReader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: newLineReader(in), out: out}
}

// Present prints the authorization URL the user has to visit.
func (t *Terminal) Present(_ context.Context, authorizeURL string) error {
	if t == nil || t.out == nil {
		return fmt.Errorf("interaction: terminal output is not configured")
	}
	_, err := fmt.Fprintf(t.out, presentFormat, authorizeURL)
	return err
}

// AwaitVerifier reads one line. Trimming and the empty check are left to the
// flow.
func (t *Terminal) AwaitVerifier(ctx context.Context) (string, error) {
	if t == nil || t.in == nil {
		return "", fmt.Errorf("interaction: terminal input is not configured")
	}
	if t.out != nil {
		if _, err := io.WriteString(t.out, verifierPrompt); err != nil {
			return "", err
		}
	}
	return t.in.readLine(ctx)
}

// Confirm prints prompt with a [y/N] suffix. Only y and yes accept.
func (t *Terminal) Confirm(ctx context.Context, prompt string) (bool, error) {
	if t == nil || t.in == nil {
		return false, fmt.Errorf("interaction: terminal input is not configured")
	}
	if t.out != nil {
		if _, err := fmt.Fprintf(t.out, "%s [y/N] ", strings.TrimSpace(prompt)); err != nil {
			return false, err
		}
	}
	answer, err := t.in.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

var (
	_ core.VerifierPrompt = (*Terminal)(nil)
	_ core.Confirmer      = (*Terminal)(nil)
)
