// Package llmtext parses free-form LLM output into validated values. It is
// best-effort by contract: every extractor has a documented fallback default
// and a failure never propagates past the field it extracts.
package llmtext

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Classification is the validated shape of an LLM intent reply.
type Classification struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category"`
}

// Result is the tagged outcome of parsing a raw LLM reply. Coerce and
// validate at the boundary; core logic only ever sees Result, never raw text.
type Result struct {
	OK   bool
	Data Classification
	Err  string // diagnostic only, never surfaced as an error
}

// defaultConfidence applies when no confidence can be extracted.
const defaultConfidence = 0.5

var (
	jsonBlockRe = regexp.MustCompile(`\{[^{}]*\}`)
	// "confidence: 0.85", "confidence of 0.85", "85% confident"
	confidenceRe = regexp.MustCompile(`confidence[^\d]{0,12}(\d+(?:\.\d+)?)`)
	percentRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	priceRe      = regexp.MustCompile(`\$\s*(\d+(?:,\d{3})*(?:\.\d+)?)`)
)

var knownIntents = []string{"buy", "compare", "learn", "recommend", "browse"}

// ParseClassification extracts an intent classification from raw LLM output.
// Strict JSON is attempted first (with or without a markdown code fence);
// prose scraping is the fallback. Field defaults: intent "" (caller keeps
// its own), confidence 0.5, category "".
func ParseClassification(raw string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{Err: "empty response"}
	}

	if c, ok := parseJSON(raw); ok {
		return Result{OK: true, Data: c}
	}

	// Prose fallback: first known intent word wins.
	lower := strings.ToLower(raw)
	c := Classification{Confidence: defaultConfidence}
	for _, intent := range knownIntents {
		if strings.Contains(lower, intent) {
			c.Intent = intent
			break
		}
	}
	if c.Intent == "" {
		return Result{Err: "no intent found in response"}
	}
	c.Confidence = ExtractConfidence(lower)
	return Result{OK: true, Data: c}
}

// parseJSON attempts a strict decode of the first JSON object in raw.
func parseJSON(raw string) (Classification, bool) {
	candidate := raw
	if fenced := stripCodeFence(raw); fenced != "" {
		candidate = fenced
	}
	if !strings.HasPrefix(strings.TrimSpace(candidate), "{") {
		if m := jsonBlockRe.FindString(candidate); m != "" {
			candidate = m
		}
	}

	var c Classification
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &c); err != nil {
		return Classification{}, false
	}
	c.Intent = strings.ToLower(strings.TrimSpace(c.Intent))
	if !validIntent(c.Intent) {
		return Classification{}, false
	}
	if c.Confidence <= 0 || c.Confidence > 1 {
		c.Confidence = defaultConfidence
	}
	return c, true
}

// ExtractConfidence pulls a confidence value out of prose. Accepts either a
// 0-1 float or a percentage; default 0.5 when nothing parses.
func ExtractConfidence(text string) float64 {
	if m := confidenceRe.FindStringSubmatch(strings.ToLower(text)); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			if v > 1 && v <= 100 {
				v /= 100
			}
			if v > 0 && v <= 1 {
				return v
			}
		}
	}
	if v, ok := ExtractPercent(text); ok && v <= 100 {
		return v / 100
	}
	return defaultConfidence
}

// ExtractPercent returns the first "N%" value found in text.
func ExtractPercent(text string) (float64, bool) {
	m := percentRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractPrice returns the first "$N" amount found in text. Thousands
// separators are tolerated. No default: callers keep their own value on miss.
func ExtractPrice(text string) (float64, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func validIntent(s string) bool {
	for _, intent := range knownIntents {
		if s == intent {
			return true
		}
	}
	return false
}

// stripCodeFence unwraps a ```json ... ``` (or plain ```) fenced block.
func stripCodeFence(raw string) string {
	start := strings.Index(raw, "```")
	if start < 0 {
		return ""
	}
	rest := raw[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop the language tag line ("json").
		if lang := strings.TrimSpace(rest[:nl]); lang == "json" || lang == "" {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
