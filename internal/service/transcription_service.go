package service

import (
	"context"
	"os"
	"path/filepath"

	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/tracer"
	"ai-memory-capture/pkg/stt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SentinelTranscriptionFailed is returned in place of text when a chunk could
// not be transcribed. It is never stored.
const SentinelTranscriptionFailed = "Transcription failed"

type ITranscriptionService interface {
	Transcribe(ctx context.Context, artifactPath string) string
}

type transcriptionService struct {
	transcriber stt.Transcriber
	keepAudio   bool
	logger      logger.ILogger
}

func NewTranscriptionService(transcriber stt.Transcriber, keepAudio bool, log logger.ILogger) ITranscriptionService {
	return &transcriptionService{
		transcriber: transcriber,
		keepAudio:   keepAudio,
		logger:      log,
	}
}

// Transcribe makes a single attempt. Every failure maps to the sentinel.
func (s *transcriptionService) Transcribe(ctx context.Context, artifactPath string) string {
	ctx, span := tracer.Tracer("transcription").Start(ctx, "Transcribe")
	defer span.End()
	span.SetAttributes(attribute.String("artifact", filepath.Base(artifactPath)))

	f, err := os.Open(artifactPath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("Transcription", "Failed to open audio chunk", map[string]interface{}{
			"path":  artifactPath,
			"error": err.Error(),
		})
		return SentinelTranscriptionFailed
	}

	text, err := s.transcriber.Transcribe(ctx, filepath.Base(artifactPath), f)
	f.Close()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("Transcription", "Speech-to-text request failed", map[string]interface{}{
			"path":  artifactPath,
			"error": err.Error(),
		})
		return SentinelTranscriptionFailed
	}

	if !s.keepAudio {
		if err := os.Remove(artifactPath); err != nil {
			s.logger.Warn("Transcription", "Failed to remove audio chunk", map[string]interface{}{
				"path":  artifactPath,
				"error": err.Error(),
			})
		}
	}

	span.SetAttributes(attribute.Int("text_length", len(text)))
	return text
}
