package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// TextAnalyzer reports simple statistics about a block of text.
type TextAnalyzer struct{}

func NewTextAnalyzer() *TextAnalyzer {
	return &TextAnalyzer{}
}

func (a *TextAnalyzer) Name() string { return string(KindTextAnalyzer) }
func (a *TextAnalyzer) Kind() Kind   { return KindTextAnalyzer }

func (a *TextAnalyzer) Description() string {
	return "Analyze text and provide statistics. Input should be text to analyze."
}

var sentencePattern = regexp.MustCompile(`[.!?]+`)

func (a *TextAnalyzer) Invoke(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "Error: No text provided for analysis.", nil
	}

	words := strings.Fields(input)
	chars := len(input)
	charsNoSpaces := len(strings.ReplaceAll(input, " ", ""))
	sentences := len(sentencePattern.FindAllString(input, -1))

	totalWordLen := 0
	for _, w := range words {
		totalWordLen += len(w)
	}
	avgWordLen := float64(totalWordLen) / float64(len(words))

	return fmt.Sprintf(`Text Analysis:
- Words: %d
- Characters (total): %d
- Characters (no spaces): %d
- Sentences: %d
- Average word length: %.1f chars`,
		len(words), chars, charsNoSpaces, sentences, avgWordLen), nil
}
