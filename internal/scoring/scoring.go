package scoring

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/provexa/provexa-backend/internal/model"
)

// Answer is the candidate's recorded answer for one question.
type Answer struct {
	SelectedOptionIDs []string
	Text              *string
	// Lang selects a language variant of the short-answer key when the
	// key defines variants. Empty means the default accepted list.
	Lang string
}

// Outcome is the grading result for one question.
type Outcome struct {
	Answered       bool
	IsCorrect      *bool
	Score          float64
	RequiresManual bool
	Reason         string
}

const (
	ReasonCorrect         = "correct"
	ReasonWrong           = "wrong"
	ReasonPartial         = "partial"
	ReasonUnanswered      = "unanswered"
	ReasonManual          = "manual_grading_required"
	ReasonMalformedKey    = "malformed_answer_key"
	ReasonMalformedAnswer = "malformed_answer"
)

// ─── Answer key schemas (per question type) ─────────────────────────

type choiceKey struct {
	Correct string `json:"correct"`
}

type multiChoiceKey struct {
	Correct []string `json:"correct"`
	Partial bool     `json:"partial"`
}

type shortAnswerKey struct {
	Accepted       []string            `json:"accepted"`
	Variants       map[string][]string `json:"variants,omitempty"`
	CaseSensitive  bool                `json:"case_sensitive"`
	KeepWhitespace bool                `json:"keep_whitespace"`
}

type numericKey struct {
	Value     float64 `json:"value"`
	Tolerance float64 `json:"tolerance"`
}

// Score evaluates one answer against the question type recorded in the
// attempt snapshot. Dispatch is by type tag; every type has exactly one
// evaluation function.
func Score(qType model.QuestionType, answerKey json.RawMessage, ans Answer, points float64) Outcome {
	if points < 0 {
		points = 0
	}

	switch qType {
	case model.QuestionTypeSingleChoice, model.QuestionTypeTrueFalse:
		return scoreSingleChoice(answerKey, ans, points)
	case model.QuestionTypeMultiChoice:
		return scoreMultiChoice(answerKey, ans, points)
	case model.QuestionTypeShortAnswer:
		return scoreShortAnswer(answerKey, ans, points)
	case model.QuestionTypeNumeric:
		return scoreNumeric(answerKey, ans, points)
	case model.QuestionTypeEssay:
		// Essay is never auto-graded. Score stays 0 until a grader acts.
		return Outcome{Answered: ans.Text != nil && *ans.Text != "", RequiresManual: true, Reason: ReasonManual}
	default:
		return Outcome{Reason: ReasonMalformedKey}
	}
}

func scoreSingleChoice(keyRaw json.RawMessage, ans Answer, points float64) Outcome {
	var key choiceKey
	if err := json.Unmarshal(keyRaw, &key); err != nil || key.Correct == "" {
		return Outcome{Reason: ReasonMalformedKey}
	}

	if len(ans.SelectedOptionIDs) == 0 {
		return Outcome{Reason: ReasonUnanswered}
	}
	if len(ans.SelectedOptionIDs) > 1 {
		return wrong(ReasonMalformedAnswer)
	}

	if ans.SelectedOptionIDs[0] == key.Correct {
		return correct(points)
	}
	return wrong(ReasonWrong)
}

func scoreMultiChoice(keyRaw json.RawMessage, ans Answer, points float64) Outcome {
	var key multiChoiceKey
	if err := json.Unmarshal(keyRaw, &key); err != nil || len(key.Correct) == 0 {
		return Outcome{Reason: ReasonMalformedKey}
	}

	selected := normalizeSet(ans.SelectedOptionIDs)
	if len(selected) == 0 {
		return Outcome{Reason: ReasonUnanswered}
	}
	correctSet := normalizeSet(key.Correct)

	if equalSets(selected, correctSet) {
		return correct(points)
	}

	if key.Partial {
		earned := partialCredit(selected, correctSet, points)
		if earned > 0 {
			f := false
			return Outcome{Answered: true, IsCorrect: &f, Score: earned, Reason: ReasonPartial}
		}
	}
	return wrong(ReasonWrong)
}

// partialCredit awards hits minus wrong picks, scaled over the correct
// set size and floored at zero.
func partialCredit(selected, correctSet []string, points float64) float64 {
	inCorrect := make(map[string]bool, len(correctSet))
	for _, id := range correctSet {
		inCorrect[id] = true
	}

	hits, misses := 0, 0
	for _, id := range selected {
		if inCorrect[id] {
			hits++
		} else {
			misses++
		}
	}

	net := hits - misses
	if net <= 0 {
		return 0
	}
	return points * float64(net) / float64(len(correctSet))
}

func scoreShortAnswer(keyRaw json.RawMessage, ans Answer, points float64) Outcome {
	var key shortAnswerKey
	if err := json.Unmarshal(keyRaw, &key); err != nil {
		return Outcome{Reason: ReasonMalformedKey}
	}

	accepted := key.Accepted
	if ans.Lang != "" {
		if variant, ok := key.Variants[ans.Lang]; ok {
			accepted = variant
		}
	}
	if len(accepted) == 0 {
		return Outcome{Reason: ReasonMalformedKey}
	}

	if ans.Text == nil || strings.TrimSpace(*ans.Text) == "" {
		return Outcome{Reason: ReasonUnanswered}
	}

	got := NormalizeText(*ans.Text, key.CaseSensitive, key.KeepWhitespace)
	for _, want := range accepted {
		if got == NormalizeText(want, key.CaseSensitive, key.KeepWhitespace) {
			return correct(points)
		}
	}
	return wrong(ReasonWrong)
}

func scoreNumeric(keyRaw json.RawMessage, ans Answer, points float64) Outcome {
	var key numericKey
	if err := json.Unmarshal(keyRaw, &key); err != nil || key.Tolerance < 0 {
		return Outcome{Reason: ReasonMalformedKey}
	}

	if ans.Text == nil || strings.TrimSpace(*ans.Text) == "" {
		return Outcome{Reason: ReasonUnanswered}
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(*ans.Text), 64)
	if err != nil {
		return wrong(ReasonMalformedAnswer)
	}

	if math.Abs(value-key.Value) <= key.Tolerance {
		return correct(points)
	}
	return wrong(ReasonWrong)
}

// NormalizeText applies the short-answer comparison flags: spaces are
// trimmed, inner whitespace runs collapse to a single space unless the
// key keeps whitespace verbatim, and case folds unless case-sensitive.
func NormalizeText(s string, caseSensitive, keepWhitespace bool) string {
	s = strings.TrimSpace(s)
	if !keepWhitespace {
		s = strings.Join(strings.Fields(s), " ")
	}
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

// ─── Helpers ────────────────────────────────────────────────────────

func correct(points float64) Outcome {
	t := true
	return Outcome{Answered: true, IsCorrect: &t, Score: points, Reason: ReasonCorrect}
}

func wrong(reason string) Outcome {
	f := false
	return Outcome{Answered: true, IsCorrect: &f, Reason: reason}
}

// normalizeSet trims, drops empties, dedupes and sorts option ids so
// set comparison ignores order and duplicates.
func normalizeSet(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
