package openai

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"ai-memory-capture/pkg/stt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type WhisperTranscriber struct {
	client openai.Client
	model  string
}

var _ stt.Transcriber = &WhisperTranscriber{}

func NewWhisperTranscriber(apiKey, model string, opts ...option.RequestOption) *WhisperTranscriber {
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &WhisperTranscriber{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "audio/mp4"
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(w.model),
		File:  openai.File(audio, filepath.Base(filename), contentTypeFor(filename)),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	return resp.Text, nil
}
