package stt

import (
	"context"
	"io"
)

// Transcriber turns an audio stream into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}
