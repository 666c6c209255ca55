// Package query implements the deterministic half of the pipeline: text
// normalization with typo correction and synonym/category-based expansion.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/knowledge"
)

// minSpellCheckLen is the minimum cleaned-query length before the external
// spell checker is consulted.
const minSpellCheckLen = 4

// Normalizer lower-cases, cleans, stop-word-strips and typo-corrects queries.
// The external corrector is consulted only when no static correction applied.
type Normalizer struct {
	kb      *knowledge.Base
	speller domain.SpellCorrector // optional
	logger  *zap.Logger
}

// NewNormalizer creates a normalizer. speller may be nil.
func NewNormalizer(kb *knowledge.Base, speller domain.SpellCorrector, logger *zap.Logger) *Normalizer {
	return &Normalizer{kb: kb, speller: speller, logger: logger}
}

// NormalizeResult is the outcome of one normalization pass.
type NormalizeResult struct {
	// Normalized is the cleaned query with stop-words removed. Empty input
	// yields an empty Normalized; callers treat that as "no constraint".
	Normalized string
	// Corrected is the cleaned query with typos corrected but stop-words
	// retained, for consumers that need intent-bearing verbs ("need", "want").
	Corrected string
	// Terms are the normalized tokens, ordered and deduplicated.
	Terms []string
	// Corrections lists applied typo fixes as "from→to".
	Corrections []string
	// Steps is the ordered log of transformations applied.
	Steps []string
}

// Normalize cleans raw and strips stop-words. It is pure over the static
// dictionaries except for the single optional external spell-check call.
func (n *Normalizer) Normalize(ctx context.Context, raw string) NormalizeResult {
	var res NormalizeResult

	cleaned := clean(raw)
	if cleaned != strings.TrimSpace(raw) {
		res.Steps = append(res.Steps, "cleaned: lowercased, stripped punctuation, collapsed whitespace")
	}
	if cleaned == "" {
		res.Steps = append(res.Steps, "empty query after cleaning")
		return res
	}

	tokens := strings.Fields(cleaned)
	corrected := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if fix, ok := n.kb.CorrectTypo(tok); ok {
			res.Corrections = append(res.Corrections, tok+"→"+fix)
			corrected = append(corrected, strings.Fields(fix)...)
			continue
		}
		corrected = append(corrected, tok)
	}
	if len(res.Corrections) > 0 {
		res.Steps = append(res.Steps,
			fmt.Sprintf("corrected %d typo(s): %s", len(res.Corrections), strings.Join(res.Corrections, ", ")))
	}

	res.Corrected = strings.Join(corrected, " ")

	// External spell check only when the static dictionary found nothing and
	// the query is long enough to be worth a network call.
	if len(res.Corrections) == 0 && len(res.Corrected) >= minSpellCheckLen && n.speller != nil {
		if ext := n.correctExternal(ctx, res.Corrected); ext != "" {
			res.Corrected = ext
			corrected = strings.Fields(ext)
			res.Steps = append(res.Steps, "applied external spelling correction")
		}
	}

	kept := make([]string, 0, len(corrected))
	removed := 0
	for _, tok := range corrected {
		if n.kb.IsStopWord(tok) {
			removed++
			continue
		}
		kept = append(kept, tok)
	}
	if removed > 0 {
		res.Steps = append(res.Steps, fmt.Sprintf("removed %d stop word(s)", removed))
	}

	res.Normalized = strings.Join(kept, " ")
	res.Terms = dedupe(kept)
	return res
}

// correctExternal asks the external corrector and accepts the result only if
// it differs from the input. Failures degrade silently to the local result.
func (n *Normalizer) correctExternal(ctx context.Context, cleaned string) string {
	ext, err := n.speller.CorrectSpelling(ctx, cleaned)
	if err != nil {
		n.logger.Warn("external spell check failed, keeping local query", zap.Error(err))
		return ""
	}
	ext = clean(ext)
	if ext == "" || ext == cleaned {
		return ""
	}
	return ext
}

// clean lowercases s, drops characters outside letters/digits/space/$/-,
// and collapses runs of whitespace.
func clean(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '$', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
