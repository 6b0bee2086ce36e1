package tools

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DataFormatter reformats text. Input is "text|format_type"; the format
// defaults to "title" when no separator is present.
type DataFormatter struct {
	titleCaser cases.Caser
}

func NewDataFormatter() *DataFormatter {
	return &DataFormatter{
		titleCaser: cases.Title(language.English),
	}
}

func (f *DataFormatter) Name() string { return string(KindDataFormatter) }
func (f *DataFormatter) Kind() Kind   { return KindDataFormatter }

func (f *DataFormatter) Description() string {
	return "Format text data. Input should be 'text|format_type' where format_type is: uppercase, lowercase, title, capitalize, or reverse."
}

func (f *DataFormatter) Invoke(ctx context.Context, input string) (string, error) {
	text := input
	formatType := "title"

	if idx := strings.Index(input, "|"); idx >= 0 {
		text = strings.TrimSpace(input[:idx])
		if ft := strings.TrimSpace(input[idx+1:]); ft != "" {
			formatType = ft
		}
	}

	if text == "" {
		return "Error: No text provided to format.", nil
	}

	switch strings.ToLower(formatType) {
	case "uppercase":
		return strings.ToUpper(text), nil
	case "lowercase":
		return strings.ToLower(text), nil
	case "title":
		return f.titleCaser.String(text), nil
	case "capitalize":
		return capitalizeFirst(strings.ToLower(text)), nil
	case "reverse":
		return reverseString(text), nil
	default:
		return fmt.Sprintf("Error: Unknown format type '%s'. Use: uppercase, lowercase, title, capitalize, or reverse.", formatType), nil
	}
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
