package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// QuestionType tags the grading rule that applies to a question.
type QuestionType string

const (
	QuestionTypeSingleChoice QuestionType = "SINGLE_CHOICE"
	QuestionTypeTrueFalse    QuestionType = "TRUE_FALSE"
	QuestionTypeMultiChoice  QuestionType = "MULTI_CHOICE"
	QuestionTypeShortAnswer  QuestionType = "SHORT_ANSWER"
	QuestionTypeNumeric      QuestionType = "NUMERIC"
	QuestionTypeEssay        QuestionType = "ESSAY"
)

// Question represents a single exam question. AnswerKey is a typed JSON
// document whose schema depends on QuestionType; it is never sent to
// candidates.
type Question struct {
	ID           uuid.UUID       `json:"id"`
	ExamID       uuid.UUID       `json:"exam_id"`
	QuestionText string          `json:"question_text"`
	QuestionType QuestionType    `json:"question_type"`
	Options      json.RawMessage `json:"options"`
	AnswerKey    json.RawMessage `json:"answer_key,omitempty"`
	Points       float64         `json:"points"`
	OrderNum     int             `json:"order_num"`
}

// QuestionForCandidate is a question stripped of its answer key, in
// snapshot order, as delivered when an attempt starts.
type QuestionForCandidate struct {
	ID           uuid.UUID       `json:"id"`
	QuestionText string          `json:"question_text"`
	QuestionType QuestionType    `json:"question_type"`
	Options      json.RawMessage `json:"options"`
	Points       float64         `json:"points"`
	OrderNum     int             `json:"order_num"`
}

// AddQuestionRequest is the payload for adding a question to an exam.
type AddQuestionRequest struct {
	QuestionText string          `json:"question_text" binding:"required,min=1,max=5000"`
	QuestionType string          `json:"question_type" binding:"required,oneof=SINGLE_CHOICE TRUE_FALSE MULTI_CHOICE SHORT_ANSWER NUMERIC ESSAY"`
	Options      json.RawMessage `json:"options" binding:"omitempty"`
	AnswerKey    json.RawMessage `json:"answer_key" binding:"omitempty"`
	Points       float64         `json:"points" binding:"required,gt=0"`
	OrderNum     int             `json:"order_num" binding:"min=0"`
}

// ReplaceQuestionsRequest is the payload for bulk replacing questions.
type ReplaceQuestionsRequest struct {
	Questions []AddQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}
