package filter

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Span is a piece of highlighted text.
type Span struct {
	Text  string
	Match bool
}

// Highlight splits text into literal and matched spans for the words in query.
// Matching is case-insensitive and query words are taken literally.
// Concatenating the Text of the returned spans always yields text.
func Highlight(text, query string) []Span {
	if text == "" {
		return nil
	}
	re := highlightPattern(query)
	if re == nil {
		return []Span{{Text: text}}
	}

	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Span{{Text: text}}
	}

	spans := make([]Span, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			spans = append(spans, Span{Text: text[last:loc[0]]})
		}
		spans = append(spans, Span{Text: text[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Text: text[last:]})
	}
	return spans
}

// Render joins spans, wrapping matched ones with mark.
func Render(spans []Span, mark func(string) string, plain func(string) string) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Match {
			b.WriteString(mark(s.Text))
			continue
		}
		b.WriteString(plain(s.Text))
	}
	return b.String()
}

func highlightPattern(query string) *regexp.Regexp {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil
	}
	quoted := lo.Map(words, func(w string, _ int) string {
		return regexp.QuoteMeta(w)
	})
	return regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
}
