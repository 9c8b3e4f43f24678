package domain

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// CanonicalizeAnswer normalizes a submitted or stored answer value to a
// sorted slice of strings. This is the single comparison form used by
// auto-grading: scalars become one-element slices, booleans render as
// "true"/"false", numbers render in minimal decimal form, strings are
// whitespace-trimmed, and arrays are canonicalized element-wise and
// then sorted so selection order never matters.
//
// String content is matched exactly (no case folding beyond boolean
// literals): free-text answers score only on an exact match with the
// stored correct answer.
func CanonicalizeAnswer(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, canonicalizeScalar(e))
		}
		sort.Strings(out)
		return out
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, canonicalizeScalar(e))
		}
		sort.Strings(out)
		return out
	default:
		return []string{canonicalizeScalar(v)}
	}
}

func canonicalizeScalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		// "True"/"FALSE" and friends must compare equal to JSON booleans.
		if strings.EqualFold(s, "true") {
			return "true"
		}
		if strings.EqualFold(s, "false") {
			return "false"
		}
		return s
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(b))
	}
}

// AnswersEqual reports whether a submitted answer matches the stored
// correct answer once both are canonicalized. An absent answer never
// matches.
func AnswersEqual(submitted, correct interface{}) bool {
	a := CanonicalizeAnswer(submitted)
	b := CanonicalizeAnswer(correct)
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GradeAnswers computes the auto-graded score for a submission: each
// question whose submitted answer matches its correct answer adds the
// question's points (default 1). Questions without a submitted answer
// contribute zero.
func GradeAnswers(questions []Question, answers map[string]interface{}) int {
	score := 0
	for i := range questions {
		q := &questions[i]
		submitted, ok := answers[q.ID]
		if !ok {
			continue
		}
		if AnswersEqual(submitted, q.CorrectAnswer) {
			score += q.PointsOrDefault()
		}
	}
	return score
}
