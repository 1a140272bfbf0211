package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/provexa/provexa-backend/internal/model"
)

func strPtr(s string) *string { return &s }

func assertOutcome(t *testing.T, got Outcome, reason string, answered bool, score float64, isCorrect *bool) {
	t.Helper()
	if got.Reason != reason {
		t.Fatalf("reason = %q, want %q", got.Reason, reason)
	}
	if got.Answered != answered {
		t.Fatalf("answered = %v, want %v", got.Answered, answered)
	}
	if math.Abs(got.Score-score) > 1e-9 {
		t.Fatalf("score = %v, want %v", got.Score, score)
	}
	if (got.IsCorrect == nil) != (isCorrect == nil) {
		t.Fatalf("is_correct = %v, want %v", got.IsCorrect, isCorrect)
	}
	if got.IsCorrect != nil && *got.IsCorrect != *isCorrect {
		t.Fatalf("is_correct = %v, want %v", *got.IsCorrect, *isCorrect)
	}
}

func boolPtr(b bool) *bool { return &b }

func TestScore_SingleChoice(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		selected  []string
		points    float64
		reason    string
		answered  bool
		score     float64
		isCorrect *bool
	}{
		{name: "correct option", key: `{"correct":"opt_b"}`, selected: []string{"opt_b"}, points: 2, reason: ReasonCorrect, answered: true, score: 2, isCorrect: boolPtr(true)},
		{name: "wrong option", key: `{"correct":"opt_b"}`, selected: []string{"opt_a"}, points: 2, reason: ReasonWrong, answered: true, score: 0, isCorrect: boolPtr(false)},
		{name: "unanswered", key: `{"correct":"opt_b"}`, selected: nil, points: 2, reason: ReasonUnanswered, answered: false, score: 0, isCorrect: nil},
		{name: "multiple selections malformed", key: `{"correct":"opt_b"}`, selected: []string{"opt_a", "opt_b"}, points: 2, reason: ReasonMalformedAnswer, answered: true, score: 0, isCorrect: boolPtr(false)},
		{name: "malformed key", key: `{}`, selected: []string{"opt_a"}, points: 2, reason: ReasonMalformedKey, answered: false, score: 0, isCorrect: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(model.QuestionTypeSingleChoice, json.RawMessage(tc.key), Answer{SelectedOptionIDs: tc.selected}, tc.points)
			assertOutcome(t, got, tc.reason, tc.answered, tc.score, tc.isCorrect)
		})
	}
}

func TestScore_TrueFalse(t *testing.T) {
	got := Score(model.QuestionTypeTrueFalse, json.RawMessage(`{"correct":"true"}`), Answer{SelectedOptionIDs: []string{"true"}}, 1)
	assertOutcome(t, got, ReasonCorrect, true, 1, boolPtr(true))

	got = Score(model.QuestionTypeTrueFalse, json.RawMessage(`{"correct":"true"}`), Answer{SelectedOptionIDs: []string{"false"}}, 1)
	assertOutcome(t, got, ReasonWrong, true, 0, boolPtr(false))
}

func TestScore_MultiChoice(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		selected  []string
		points    float64
		reason    string
		answered  bool
		score     float64
		isCorrect *bool
	}{
		{name: "exact set correct", key: `{"correct":["1","3"]}`, selected: []string{"1", "3"}, points: 4, reason: ReasonCorrect, answered: true, score: 4, isCorrect: boolPtr(true)},
		{name: "order irrelevant", key: `{"correct":["1","3"]}`, selected: []string{"3", "1"}, points: 4, reason: ReasonCorrect, answered: true, score: 4, isCorrect: boolPtr(true)},
		{name: "duplicates collapse", key: `{"correct":["1","3"]}`, selected: []string{"1", "1", "3"}, points: 4, reason: ReasonCorrect, answered: true, score: 4, isCorrect: boolPtr(true)},
		{name: "subset is wrong all-or-nothing", key: `{"correct":["1","3"]}`, selected: []string{"1"}, points: 4, reason: ReasonWrong, answered: true, score: 0, isCorrect: boolPtr(false)},
		{name: "superset is wrong all-or-nothing", key: `{"correct":["1","3"]}`, selected: []string{"1", "3", "2"}, points: 4, reason: ReasonWrong, answered: true, score: 0, isCorrect: boolPtr(false)},
		{name: "unanswered", key: `{"correct":["1","3"]}`, selected: nil, points: 4, reason: ReasonUnanswered, answered: false, score: 0, isCorrect: nil},
		{name: "partial credit hit", key: `{"correct":["1","3"],"partial":true}`, selected: []string{"1"}, points: 4, reason: ReasonPartial, answered: true, score: 2, isCorrect: boolPtr(false)},
		{name: "partial credit penalizes wrong pick", key: `{"correct":["1","3"],"partial":true}`, selected: []string{"1", "2"}, points: 4, reason: ReasonWrong, answered: true, score: 0, isCorrect: boolPtr(false)},
		{name: "malformed key empty set", key: `{"correct":[]}`, selected: []string{"1"}, points: 4, reason: ReasonMalformedKey, answered: false, score: 0, isCorrect: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(model.QuestionTypeMultiChoice, json.RawMessage(tc.key), Answer{SelectedOptionIDs: tc.selected}, tc.points)
			assertOutcome(t, got, tc.reason, tc.answered, tc.score, tc.isCorrect)
		})
	}
}

func TestScore_ShortAnswer(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		text      *string
		lang      string
		points    float64
		reason    string
		answered  bool
		score     float64
		isCorrect *bool
	}{
		{name: "exact match", key: `{"accepted":["Paris"]}`, text: strPtr("Paris"), points: 2, reason: ReasonCorrect, answered: true, score: 2, isCorrect: boolPtr(true)},
		{name: "case folded by default", key: `{"accepted":["Paris"]}`, text: strPtr("pArIs"), points: 2, reason: ReasonCorrect, answered: true, score: 2, isCorrect: boolPtr(true)},
		{name: "case sensitive rejects fold", key: `{"accepted":["Paris"],"case_sensitive":true}`, text: strPtr("paris"), points: 2, reason: ReasonWrong, answered: true, score: 0, isCorrect: boolPtr(false)},
		{name: "whitespace collapsed", key: `{"accepted":["New York"]}`, text: strPtr("  new   york "), points: 2, reason: ReasonCorrect, answered: true, score: 2, isCorrect: boolPtr(true)},
		{name: "second accepted answer", key: `{"accepted":["NYC","New York"]}`, text: strPtr("nyc"), points: 2, reason: ReasonCorrect, answered: true, score: 2, isCorrect: boolPtr(true)},
		{name: "language variant used", key: `{"accepted":["seven"],"variants":{"id":["tujuh"]}}`, text: strPtr("tujuh"), lang: "id", points: 1, reason: ReasonCorrect, answered: true, score: 1, isCorrect: boolPtr(true)},
		{name: "unknown variant falls back", key: `{"accepted":["seven"],"variants":{"id":["tujuh"]}}`, text: strPtr("seven"), lang: "fr", points: 1, reason: ReasonCorrect, answered: true, score: 1, isCorrect: boolPtr(true)},
		{name: "blank text unanswered", key: `{"accepted":["Paris"]}`, text: strPtr("   "), points: 2, reason: ReasonUnanswered, answered: false, score: 0, isCorrect: nil},
		{name: "nil text unanswered", key: `{"accepted":["Paris"]}`, text: nil, points: 2, reason: ReasonUnanswered, answered: false, score: 0, isCorrect: nil},
		{name: "empty accepted list malformed", key: `{"accepted":[]}`, text: strPtr("Paris"), points: 2, reason: ReasonMalformedKey, answered: false, score: 0, isCorrect: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(model.QuestionTypeShortAnswer, json.RawMessage(tc.key), Answer{Text: tc.text, Lang: tc.lang}, tc.points)
			assertOutcome(t, got, tc.reason, tc.answered, tc.score, tc.isCorrect)
		})
	}
}

func TestScore_Numeric(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		text      *string
		points    float64
		reason    string
		answered  bool
		score     float64
		isCorrect *bool
	}{
		{name: "inside tolerance", key: `{"value":10,"tolerance":0.5}`, text: strPtr("10.4"), points: 3, reason: ReasonCorrect, answered: true, score: 3, isCorrect: boolPtr(true)},
		{name: "outside tolerance", key: `{"value":10,"tolerance":0.5}`, text: strPtr("10.6"), points: 3, reason: ReasonWrong, answered: true, score: 0, isCorrect: boolPtr(false)},
		{name: "exact boundary", key: `{"value":10,"tolerance":0.5}`, text: strPtr("10.5"), points: 3, reason: ReasonCorrect, answered: true, score: 3, isCorrect: boolPtr(true)},
		{name: "zero tolerance exact", key: `{"value":42,"tolerance":0}`, text: strPtr("42"), points: 1, reason: ReasonCorrect, answered: true, score: 1, isCorrect: boolPtr(true)},
		{name: "negative value", key: `{"value":-3.5,"tolerance":0.1}`, text: strPtr("-3.45"), points: 1, reason: ReasonCorrect, answered: true, score: 1, isCorrect: boolPtr(true)},
		{name: "non numeric text", key: `{"value":10,"tolerance":0.5}`, text: strPtr("ten"), points: 3, reason: ReasonMalformedAnswer, answered: true, score: 0, isCorrect: boolPtr(false)},
		{name: "unanswered", key: `{"value":10,"tolerance":0.5}`, text: nil, points: 3, reason: ReasonUnanswered, answered: false, score: 0, isCorrect: nil},
		{name: "negative tolerance malformed", key: `{"value":10,"tolerance":-1}`, text: strPtr("10"), points: 3, reason: ReasonMalformedKey, answered: false, score: 0, isCorrect: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(model.QuestionTypeNumeric, json.RawMessage(tc.key), Answer{Text: tc.text}, tc.points)
			assertOutcome(t, got, tc.reason, tc.answered, tc.score, tc.isCorrect)
		})
	}
}

func TestScore_Essay(t *testing.T) {
	got := Score(model.QuestionTypeEssay, json.RawMessage(`{}`), Answer{Text: strPtr("my long essay")}, 10)
	if !got.RequiresManual {
		t.Fatal("essay must require manual grading")
	}
	if got.Score != 0 {
		t.Fatalf("essay auto score = %v, want 0", got.Score)
	}
	if got.IsCorrect != nil {
		t.Fatal("essay correctness must be undecided before manual grading")
	}
	if !got.Answered {
		t.Fatal("non-empty essay text should count as answered")
	}

	got = Score(model.QuestionTypeEssay, json.RawMessage(`{}`), Answer{}, 10)
	if got.Answered {
		t.Fatal("empty essay should not count as answered")
	}
	if !got.RequiresManual {
		t.Fatal("even an empty essay stays in the manual queue")
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in             string
		caseSensitive  bool
		keepWhitespace bool
		want           string
	}{
		{"  Hello   World  ", false, false, "hello world"},
		{"  Hello   World  ", true, false, "Hello World"},
		{" Hello  World ", false, true, "hello  world"},
		{"\tTabbed\nAnswer\t", false, false, "tabbed answer"},
	}
	for _, tc := range tests {
		if got := NormalizeText(tc.in, tc.caseSensitive, tc.keepWhitespace); got != tc.want {
			t.Errorf("NormalizeText(%q, %v, %v) = %q, want %q", tc.in, tc.caseSensitive, tc.keepWhitespace, got, tc.want)
		}
	}
}
