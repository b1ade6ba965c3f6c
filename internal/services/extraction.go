package services

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"roombooking/internal/domain"
)

// FallbackClarification is shown when model output cannot be understood.
const FallbackClarification = "Sorry, I couldn't process that request. Please try again or use the manual form."

// ErrNoJSONObject is returned by RecoverJSON when no JSON object can be found.
var ErrNoJSONObject = errors.New("no JSON object found in model output")

// maxJSONCandidates bounds how many '{' positions RecoverJSON scans from, keeping
// brace-heavy output linear in its length.
const maxJSONCandidates = 32

// RecoverJSON returns the JSON object carried by raw. The whole text is tried first;
// otherwise balanced {...} spans starting at the first maxJSONCandidates braces are
// tried in order and the first one that parses wins. Braces inside string literals
// do not count towards balance.
func RecoverJSON(raw string) (map[string]any, error) {
	if obj, ok := decodeObject(strings.TrimSpace(raw)); ok {
		return obj, nil
	}
	for from, tried := 0, 0; from < len(raw) && tried < maxJSONCandidates; tried++ {
		i := strings.IndexByte(raw[from:], '{')
		if i < 0 {
			break
		}
		start := from + i
		if span, ok := balancedObject(raw[start:]); ok {
			if obj, ok := decodeObject(span); ok {
				return obj, nil
			}
		}
		from = start + 1
	}
	return nil, ErrNoJSONObject
}

// balancedObject scans s, which starts with '{', up to the matching '}'.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

func decodeObject(s string) (map[string]any, bool) {
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// NormalizeExtraction turns raw model output into a typed Extraction. It never fails:
// unrecoverable output yields a degraded, low-confidence extraction that keeps raw.
func NormalizeExtraction(raw string) domain.Extraction {
	obj, err := RecoverJSON(raw)
	if err != nil {
		return FallbackExtraction(raw, err)
	}
	return extractionFromObject(obj)
}

// FallbackExtraction is the degraded extraction for output that could not be recovered.
func FallbackExtraction(raw string, cause error) domain.Extraction {
	ex := domain.Extraction{
		Clarification: FallbackClarification,
		Confidence:    domain.ConfidenceLow,
		Degraded:      true,
		RawText:       raw,
	}
	if cause != nil {
		ex.Error = cause.Error()
	}
	return ex
}

// extractionFromObject reads the model's fields leniently: unknown keys are ignored,
// blank strings and "null" count as absent, and numbers are accepted where text is expected.
func extractionFromObject(obj map[string]any) domain.Extraction {
	slots := domain.ExtractedSlots{
		RoomName: stringField(obj, "room_name"),
		Date:     stringField(obj, "date"),
		Title:    stringField(obj, "title"),
		BookedBy: stringField(obj, "booked_by"),
	}
	slots.StartTime = clockField(obj, "start_time")
	slots.EndTime = clockField(obj, "end_time")

	minCapacity := intField(obj, "min_capacity")
	if req, ok := obj["room_requirements"].(map[string]any); ok {
		if n := intField(req, "min_capacity"); n != nil {
			minCapacity = n
		}
	}
	if minCapacity != nil {
		slots.RoomRequirements = &domain.RoomRequirements{MinCapacity: minCapacity}
	}

	ex := domain.Extraction{
		Slots:      slots,
		Confidence: domain.ConfidenceMedium,
	}
	if s := stringField(obj, "message"); s != nil {
		ex.Message = *s
	}
	if s := stringField(obj, "clarification_needed"); s != nil {
		ex.Clarification = *s
	}
	if s := stringField(obj, "confidence"); s != nil {
		switch c := domain.Confidence(strings.ToLower(*s)); c {
		case domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow:
			ex.Confidence = c
		}
	}
	return ex
}

func stringField(obj map[string]any, key string) *string {
	var s string
	switch v := obj[key].(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return nil
	}
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return nil
	}
	return &s
}

// clockField normalizes parsable times to HH:MM and keeps anything else as given.
func clockField(obj map[string]any, key string) *string {
	s := stringField(obj, key)
	if s == nil {
		return nil
	}
	if t, err := domain.ParseClock(*s); err == nil {
		formatted := domain.FormatClock(t)
		return &formatted
	}
	return s
}

func intField(obj map[string]any, key string) *int {
	var n int
	switch v := obj[key].(type) {
	case float64:
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n <= 0 {
		return nil
	}
	return &n
}
