package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/usestring/mcp-server-template/internal/registry"
)

// Text provides string manipulation tools.
func Text() registry.Provider {
	return registry.NewProvider("tools.text", func(r *registry.Registrar) error {
		return r.Add(
			registry.Tool("transform_text", "Transform text: upper, lower, title, reverse, snake or kebab case", transformText,
				registry.StringParam("text", "Text to transform").Require(),
				registry.StringParam("operation", "Transformation to apply").Require().
					OneOf("upper", "lower", "title", "reverse", "snake", "kebab"),
			),
			registry.Tool("count_words", "Count words, characters, lines and sentences in text", countWords,
				registry.StringParam("text", "Text to analyze").Require(),
			),
			registry.Tool("lorem_ipsum", "Generate Lorem Ipsum placeholder text", loremIpsum,
				registry.IntegerParam("paragraphs", "Number of paragraphs (1-10)").WithDefault(1),
				registry.IntegerParam("sentences", "Sentences per paragraph (1-20)").WithDefault(4),
			),
		)
	})
}

func transformText(_ context.Context, args registry.Args) (registry.Reply, error) {
	text, op := args.String("text"), args.String("operation")

	var out string
	switch op {
	case "upper":
		out = cases.Upper(language.Und).String(text)
	case "lower":
		out = cases.Lower(language.Und).String(text)
	case "title":
		out = cases.Title(language.Und).String(text)
	case "reverse":
		r := []rune(text)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		out = string(r)
	case "snake":
		out = joinWords(text, "_")
	case "kebab":
		out = joinWords(text, "-")
	}

	return registry.OK(map[string]any{
		"original":    text,
		"transformed": out,
		"operation":   op,
	}, fmt.Sprintf("Text transformed with %s", op)), nil
}

// joinWords lowercases text and joins its words with sep. Word boundaries are
// non-alphanumeric runs and lower-to-upper case changes.
func joinWords(text, sep string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				flush()
			}
			cur = append(cur, r)
		default:
			flush()
		}
		prev = r
	}
	flush()
	return strings.Join(words, sep)
}

func countWords(_ context.Context, args registry.Args) (registry.Reply, error) {
	text := args.String("text")

	words := strings.Fields(text)
	noSpaces := 0
	sentences := 0
	inSentence := false
	for _, r := range text {
		if !unicode.IsSpace(r) {
			noSpaces++
		}
		switch {
		case r == '.' || r == '!' || r == '?':
			if inSentence {
				sentences++
			}
			inSentence = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			inSentence = true
		}
	}
	if inSentence {
		sentences++
	}
	lines := 0
	if text != "" {
		lines = strings.Count(text, "\n") + 1
	}

	return registry.OK(map[string]any{
		"words":                len(words),
		"characters":           len([]rune(text)),
		"characters_no_spaces": noSpaces,
		"lines":                lines,
		"sentences":            sentences,
	}, fmt.Sprintf("Counted %d words", len(words))), nil
}

var loremWords = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod
tempor incididunt ut labore et dolore magna aliqua ut enim ad minim veniam quis nostrud exercitation
ullamco laboris nisi ut aliquip ex ea commodo consequat duis aute irure dolor in reprehenderit in
voluptate velit esse cillum dolore eu fugiat nulla pariatur excepteur sint occaecat cupidatat non
proident sunt in culpa qui officia deserunt mollit anim id est laborum`)

func loremIpsum(_ context.Context, args registry.Args) (registry.Reply, error) {
	paragraphs, sentences := args.Int("paragraphs"), args.Int("sentences")
	if paragraphs < 1 || paragraphs > 10 {
		return registry.Reply{}, registry.NewError(ErrCodeInvalidCount, "paragraphs must be between 1 and 10")
	}
	if sentences < 1 || sentences > 20 {
		return registry.Reply{}, registry.NewError(ErrCodeInvalidCount, "sentences must be between 1 and 20")
	}

	title := cases.Title(language.Und)
	pos := 0
	out := make([]string, 0, paragraphs)
	for range paragraphs {
		var p strings.Builder
		for s := range sentences {
			n := 6 + (pos+s)%7
			words := make([]string, n)
			for i := range words {
				words[i] = loremWords[pos%len(loremWords)]
				pos++
			}
			if s > 0 {
				p.WriteByte(' ')
			}
			words[0] = title.String(words[0])
			p.WriteString(strings.Join(words, " "))
			p.WriteByte('.')
		}
		out = append(out, p.String())
	}

	text := strings.Join(out, "\n\n")
	return registry.OK(map[string]any{
		"text":       text,
		"paragraphs": paragraphs,
		"words":      len(strings.Fields(text)),
	}, fmt.Sprintf("Generated %d paragraphs", paragraphs)), nil
}
