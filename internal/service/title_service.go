package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"ai-memory-capture/internal/tracer"
	"ai-memory-capture/pkg/llm"
)

const (
	titlePrompt         = "Given the following transcript, return a concise and descriptive title (max 10 words) summarizing the meeting topic:"
	UntitledSession     = "Untitled Session"
	Untitled            = "Untitled"
	maxFallbackTitleLen = 60
	minGeneratedTitle   = 3
)

type ITitleService interface {
	// Generate asks the language model for a title. Results of three
	// characters or fewer count as failures.
	Generate(ctx context.Context, transcript string) (string, error)
	// TitleFor returns a generated title or the fallback derived from the text.
	TitleFor(ctx context.Context, transcript string) string
}

type titleService struct {
	llm llm.LLMProvider
}

func NewTitleService(provider llm.LLMProvider) ITitleService {
	return &titleService{llm: provider}
}

func (s *titleService) Generate(ctx context.Context, transcript string) (string, error) {
	ctx, span := tracer.Tracer("title").Start(ctx, "GenerateTitle")
	defer span.End()

	out, err := s.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: titlePrompt},
		{Role: llm.RoleUser, Content: transcript},
	})
	if err != nil {
		return "", err
	}

	title := cleanGeneratedTitle(out)
	if utf8.RuneCountInString(title) <= minGeneratedTitle {
		return "", fmt.Errorf("generated title too short: %q", title)
	}
	return title, nil
}

func (s *titleService) TitleFor(ctx context.Context, transcript string) string {
	if strings.TrimSpace(transcript) == "" {
		return UntitledSession
	}
	if title, err := s.Generate(ctx, transcript); err == nil {
		return title
	}
	return FallbackTitle(transcript)
}

func cleanGeneratedTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Title:")
	return strings.Trim(strings.TrimSpace(s), "\"'“”")
}

// FallbackTitle is the text up to the first sentence terminator, trimmed,
// cut to 60 runes and capitalized.
func FallbackTitle(text string) string {
	first := text
	if i := strings.IndexAny(text, ".?!"); i >= 0 {
		first = text[:i]
	}
	first = strings.TrimSpace(first)
	if first == "" {
		return UntitledSession
	}

	runes := []rune(first)
	if len(runes) > maxFallbackTitleLen {
		runes = runes[:maxFallbackTitleLen]
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
