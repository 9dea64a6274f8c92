package transcode

import (
	"context"
	"errors"
	"testing"
)

func TestPassthroughAlwaysReturnsErrUnsupported(t *testing.T) {
	p := Passthrough{}
	_, err := p.Transcode(context.Background(), []byte("anything"), Options{})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Transcode error = %v, want ErrUnsupported", err)
	}
}
