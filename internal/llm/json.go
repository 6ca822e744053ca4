package llm

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseObject extracts a JSON object from model output. It tolerates a
// surrounding markdown code fence and leading or trailing prose. The second
// return value is false when no valid JSON object can be found.
func ParseObject(content string) (gjson.Result, bool) {
	s := StripCodeFence(content)
	if !gjson.Valid(s) {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start < 0 || end <= start {
			return gjson.Result{}, false
		}
		s = s[start : end+1]
		if !gjson.Valid(s) {
			return gjson.Result{}, false
		}
	}
	res := gjson.Parse(s)
	if !res.IsObject() {
		return gjson.Result{}, false
	}
	return res, true
}

// StripCodeFence removes a ```lang ... ``` wrapper around the whole text.
func StripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ScoreField returns the number at path clamped to [0,1], or def when the field is
// missing or not numeric. A numeric string such as "0.4" counts as a number.
func ScoreField(obj gjson.Result, path string, def float64) float64 {
	v := obj.Get(path)
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil || math.IsNaN(parsed) {
			return def
		}
		f = parsed
	default:
		return def
	}
	return min(max(f, 0), 1)
}

// BoolField returns the boolean at path, or def when missing or not a boolean.
func BoolField(obj gjson.Result, path string, def bool) bool {
	v := obj.Get(path)
	if !v.IsBool() {
		return def
	}
	return v.Bool()
}
