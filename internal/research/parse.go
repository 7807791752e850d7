package research

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"

	"grantbot/internal/model"
)

var stripTags = bluemonday.StrictPolicy()

// htmlElement matches tags a model plausibly emits. Other angle-bracket
// text such as "<age 30>" or "<https://...>" is content.
var htmlElement = regexp.MustCompile(`(?i)</?(a|b|i|u|em|strong|p|br|span|div|ul|ol|li|h[1-6]|code|pre|small|sub|sup)(\s+[a-z-]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+))*\s*/?>`)

type rawGrant struct {
	Name        flexString `json:"name"`
	Description flexString `json:"description"`
	Type        flexString `json:"type"`
	AwardAmount flexString `json:"awardAmount"`
	Eligibility flexString `json:"eligibility"`
	Deadline    flexString `json:"deadline"`
	Website     flexString `json:"website"`
}

// flexString accepts any JSON value for a text field. Numbers keep their
// literal form, null is empty and arrays are joined with ", ".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*f = flexString(flatten(v))
	return nil
}

func flatten(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := lo.FilterMap(t, func(e any, _ int) (string, bool) {
			s := strings.TrimSpace(flatten(e))
			return s, s != ""
		})
		return strings.Join(parts, ", ")
	default:
		// null and objects
		return ""
	}
}

// ParseGrants decodes the model's JSON array of grants. An optional markdown
// code fence around the array is removed first. Empty text yields no grants.
// Grants without a name are skipped and repeated names keep the first entry.
func ParseGrants(text string) ([]model.Grant, error) {
	text = stripFences(text)
	if text == "" {
		return []model.Grant{}, nil
	}

	var raw []rawGrant
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	grants := make([]model.Grant, 0, len(raw))
	for _, r := range raw {
		g := model.Grant{
			Name:        cleanText(string(r.Name)),
			Description: cleanText(string(r.Description)),
			Category:    model.NormalizeCategory(string(r.Type)),
			AwardAmount: cleanText(string(r.AwardAmount)),
			Eligibility: cleanText(string(r.Eligibility)),
			Deadline:    cleanText(string(r.Deadline)),
			Website:     strings.TrimSpace(string(r.Website)),
		}
		if g.Name == "" {
			continue
		}
		grants = append(grants, g)
	}
	return lo.UniqBy(grants, func(g model.Grant) string { return g.Name }), nil
}

// stripFences removes a leading ``` or ```json line and a trailing ```.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "```"); ok {
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "JSON")
		text = rest
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// cleanText drops HTML markup the model put into a text field and decodes
// entities. Fields without HTML elements keep their angle brackets.
func cleanText(s string) string {
	if htmlElement.MatchString(s) {
		s = stripTags.Sanitize(s)
	}
	return strings.TrimSpace(html.UnescapeString(s))
}

// DedupeSources drops citations without a URL or title and repeated URLs,
// keeping first-seen order. A positive limit caps the result.
func DedupeSources(cites []model.Source, limit int) []model.Source {
	valid := lo.Filter(cites, func(s model.Source, _ int) bool {
		return strings.TrimSpace(s.URL) != "" && strings.TrimSpace(s.Title) != ""
	})
	out := lo.UniqBy(valid, func(s model.Source) string { return s.URL })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
