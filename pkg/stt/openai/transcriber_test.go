package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhisperTranscriber_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "chunk_1.mp4", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hello from the meeting"}`))
	}))
	defer srv.Close()

	tr := NewWhisperTranscriber("key", "", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	text, err := tr.Transcribe(context.Background(), "/tmp/chunk_1.mp4", strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "hello from the meeting", text)
}

func TestWhisperTranscriber_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	tr := NewWhisperTranscriber("key", "whisper-1", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	_, err := tr.Transcribe(context.Background(), "a.mp4", strings.NewReader("x"))
	assert.Error(t, err)
}
