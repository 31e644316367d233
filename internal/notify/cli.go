package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// CLINotifier prints the digest to a writer, stdout by default. It is the
// zero-configuration channel and the fallback when others are not set up.
type CLINotifier struct {
	out io.Writer
}

var _ Notifier = (*CLINotifier)(nil)

// NewCLINotifier writes to out; nil selects stdout.
func NewCLINotifier(out io.Writer) *CLINotifier {
	if out == nil {
		out = os.Stdout
	}
	return &CLINotifier{out: out}
}

// Publish prints the digest under a banner.
func (n *CLINotifier) Publish(_ context.Context, digest Digest) error {
	banner := strings.Repeat("=", 60)
	_, err := fmt.Fprintf(n.out, "%s\n%s\n%s\n%s", banner, digest.Subject(), banner, digest.Body())
	if err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	return nil
}
