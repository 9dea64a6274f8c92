package transcode

import (
	"context"
	"fmt"
)

// Passthrough is a Transcoder that always fails with ErrUnsupported,
// exercising the WriterDriver's best-effort fallback (write the original
// bytes, log, continue) deterministically in tests.
type Passthrough struct{}

func (Passthrough) Transcode(_ context.Context, _ []byte, opts Options) (Result, error) {
	if len(opts.AcceptedSyntaxes) == 0 {
		return Result{}, fmt.Errorf("%w: no accepted syntaxes requested", ErrUnsupported)
	}
	return Result{}, fmt.Errorf("%w: %s", ErrUnsupported, opts.AcceptedSyntaxes[0])
}
