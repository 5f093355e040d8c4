package projects

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/crud"
)

// Question is a screening question asked of experts for a project.
type Question struct {
	ID        int64
	ProjectID *int64
	Text      string
}

type QuestionInput struct {
	ProjectID *int64 `json:"project_id"`
	Text      string `json:"question" validate:"required"`
}

var QuestionTable = crud.Table[Question]{
	Name:    "screening_questions",
	Key:     "question_id",
	Columns: []string{"project_id", "question"},
	Scan: func(s crud.Scanner) (Question, error) {
		var q Question
		var project sql.NullInt64
		if err := s.Scan(&q.ID, &project, &q.Text); err != nil {
			return Question{}, err
		}
		q.ProjectID = nullInt(project)
		return q, nil
	},
	Values: func(q Question) []any { return []any{q.ProjectID, q.Text} },
}

func newQuestionResource(store crud.Store[Question]) *crud.Resource[Question, QuestionInput] {
	return &crud.Resource[Question, QuestionInput]{
		Name:  "question",
		Path:  "/screening_question",
		Store: store,
		FromModel: func(q Question) QuestionInput {
			return QuestionInput{ProjectID: q.ProjectID, Text: q.Text}
		},
		ToModel: func(_ context.Context, in QuestionInput, _ *Question) (Question, error) {
			return Question{ProjectID: in.ProjectID, Text: strings.TrimSpace(in.Text)}, nil
		},
		Present: func(q Question) any {
			return gin.H{"question_id": q.ID, "project_id": q.ProjectID, "question": q.Text}
		},
	}
}

// Answer is an expert's reply to a screening question.
type Answer struct {
	ID         int64
	QuestionID *int64
	ExpertID   *int64
	Text       string
}

type AnswerInput struct {
	QuestionID *int64 `json:"question_id"`
	ExpertID   *int64 `json:"expert_id"`
	Text       string `json:"answer" validate:"required"`
}

var AnswerTable = crud.Table[Answer]{
	Name:    "answers",
	Key:     "answer_id",
	Columns: []string{"question_id", "expert_id", "answer"},
	Scan: func(s crud.Scanner) (Answer, error) {
		var a Answer
		var question, expert sql.NullInt64
		if err := s.Scan(&a.ID, &question, &expert, &a.Text); err != nil {
			return Answer{}, err
		}
		a.QuestionID = nullInt(question)
		a.ExpertID = nullInt(expert)
		return a, nil
	},
	Values: func(a Answer) []any { return []any{a.QuestionID, a.ExpertID, a.Text} },
}

func newAnswerResource(store crud.Store[Answer]) *crud.Resource[Answer, AnswerInput] {
	return &crud.Resource[Answer, AnswerInput]{
		Name:  "answer",
		Path:  "/screening_answer",
		Store: store,
		FromModel: func(a Answer) AnswerInput {
			return AnswerInput{QuestionID: a.QuestionID, ExpertID: a.ExpertID, Text: a.Text}
		},
		ToModel: func(_ context.Context, in AnswerInput, _ *Answer) (Answer, error) {
			return Answer{QuestionID: in.QuestionID, ExpertID: in.ExpertID, Text: strings.TrimSpace(in.Text)}, nil
		},
		Present: func(a Answer) any {
			return gin.H{"answer_id": a.ID, "question_id": a.QuestionID, "expert_id": a.ExpertID, "answer": a.Text}
		},
	}
}
