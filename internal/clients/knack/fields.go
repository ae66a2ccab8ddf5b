package knack

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Legacy fields arrive in several encodings for the same logical value.
// Each parser here tries the known shapes in order and degrades to a zero
// value instead of failing, so one malformed field never aborts a record.

var (
	mailtoRe   = regexp.MustCompile(`mailto:([^"]+)`)
	anchorRe   = regexp.MustCompile(`>([^<]+@[^<]+)<`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	connSpanRe = regexp.MustCompile(`<span class="([a-f0-9]{24})"[^>]*>([^<]+)</span>`)
	knackIDRe  = regexp.MustCompile(`^[a-f0-9]{24}$`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// StripTags removes any residual HTML markup from a rendered field value.
func StripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}

// ExtractEmail pulls a clean address out of any of the shapes an email field
// arrives in: a bare string, an object with an "email" sub-key, or an HTML
// anchor embedding a mailto: URI.
func ExtractEmail(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case map[string]any:
		if email, ok := val["email"].(string); ok {
			return strings.TrimSpace(email)
		}
		return ""
	case string:
		if val == "" {
			return ""
		}
		if strings.Contains(val, "@") && !strings.Contains(val, "<") {
			return strings.TrimSpace(val)
		}
		if m := mailtoRe.FindStringSubmatch(val); m != nil {
			return strings.TrimSpace(m[1])
		}
		if m := anchorRe.FindStringSubmatch(val); m != nil {
			return strings.TrimSpace(m[1])
		}
		stripped := StripTags(val)
		if strings.Contains(stripped, "@") {
			return stripped
		}
		return ""
	default:
		return ""
	}
}

// ConnectionRef is one entry of a legacy connection field: a display name
// and/or the 24-character legacy record id. Either may be absent.
type ConnectionRef struct {
	Name    string
	KnackID string
}

// ExtractConnections normalizes a connection/list field. The field may be an
// HTML fragment of tagged spans, a list of objects (identifier and/or id), or
// a comma-separated string of ids.
func ExtractConnections(v any) []ConnectionRef {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		if matches := connSpanRe.FindAllStringSubmatch(val, -1); len(matches) > 0 {
			refs := make([]ConnectionRef, 0, len(matches))
			for _, m := range matches {
				refs = append(refs, ConnectionRef{Name: strings.TrimSpace(m[2]), KnackID: m[1]})
			}
			return refs
		}
		// Comma-separated ids, or a lone name.
		var refs []ConnectionRef
		for _, part := range strings.Split(val, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if knackIDRe.MatchString(part) {
				refs = append(refs, ConnectionRef{KnackID: part})
			} else {
				refs = append(refs, ConnectionRef{Name: StripTags(part)})
			}
		}
		return refs
	case []any:
		var refs []ConnectionRef
		for _, item := range val {
			switch entry := item.(type) {
			case map[string]any:
				ref := ConnectionRef{}
				if name, ok := entry["identifier"].(string); ok {
					ref.Name = StripTags(name)
				} else if name, ok := entry["name"].(string); ok {
					ref.Name = StripTags(name)
				}
				if id, ok := entry["id"].(string); ok {
					ref.KnackID = id
				}
				if ref.Name != "" || ref.KnackID != "" {
					refs = append(refs, ref)
				}
			case string:
				if knackIDRe.MatchString(entry) {
					refs = append(refs, ConnectionRef{KnackID: entry})
				} else if entry != "" {
					refs = append(refs, ConnectionRef{Name: StripTags(entry)})
				}
			}
		}
		return refs
	default:
		return nil
	}
}

// ParseBool maps the ad hoc sentinel encodings of legacy boolean fields
// ('Yes'/'No', 'True'/'False', real booleans, empty string) to a Go bool,
// with an explicit default when the field is absent or unrecognized.
func ParseBool(v any, def bool) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.TrimSpace(val) {
		case "Yes", "True", "true":
			return true
		case "No", "False", "false", "":
			if val == "" {
				return def
			}
			return false
		default:
			return def
		}
	default:
		return def
	}
}

// ParseInt reads a numeric field that may arrive as a JSON number, a bare
// string, or a rendered string with markup. Unparseable values return the
// default.
func ParseInt(v any, def int) int {
	switch val := v.(type) {
	case int:
		return val
	case float64:
		return int(val)
	case string:
		s := strings.TrimSpace(StripTags(val))
		if s == "" {
			return def
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return def
		}
		return int(f)
	default:
		return def
	}
}

var dateLayouts = []string{
	"02/01/2006",
	"01/02/2006 15:04",
	"01/02/2006",
	"2006-01-02",
}

// ParseDate tries ISO 8601 first, then the UK and US layouts the legacy
// store emits. Returns nil when nothing parses.
func ParseDate(v any) *time.Time {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// NameParts is the decomposed person-name field.
type NameParts struct {
	Title string
	First string
	Last  string
	Full  string
}

// ExtractName handles both the structured name object and a flat string.
// Some legacy records prefix the full name with the establishment name;
// schoolName is scrubbed when present.
func ExtractName(v any, schoolName string) NameParts {
	clean := func(full string) string {
		if schoolName != "" && strings.Contains(full, schoolName) {
			full = strings.ReplaceAll(full, schoolName, "")
		}
		return strings.TrimSpace(multiSpace.ReplaceAllString(full, " "))
	}

	switch val := v.(type) {
	case map[string]any:
		str := func(key string) string {
			s, _ := val[key].(string)
			return strings.TrimSpace(s)
		}
		parts := NameParts{
			Title: str("title"),
			First: str("first"),
			Last:  str("last"),
			Full:  clean(str("full")),
		}
		if parts.Full == "" && (parts.First != "" || parts.Last != "") {
			parts.Full = strings.TrimSpace(strings.Join([]string{parts.Title, parts.First, parts.Last}, " "))
			parts.Full = multiSpace.ReplaceAllString(parts.Full, " ")
		}
		return parts
	case string:
		full := clean(StripTags(val))
		fields := strings.Fields(full)
		parts := NameParts{Full: full}
		if len(fields) > 0 {
			parts.First = fields[0]
		}
		if len(fields) > 1 {
			parts.Last = strings.Join(fields[1:], " ")
		}
		return parts
	default:
		return NameParts{}
	}
}

// CommaSeparatedIDs splits a CSV-of-ids field, dropping empties.
func CommaSeparatedIDs(v any) []string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
