package http

import (
	"bytes"
	"encoding/json"
	"time"

	"inno-quiz-service/internal/domain"
)

// flexString accepts either a JSON string or a JSON number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6"`
}

type createQuizRequest struct {
	Name     string     `json:"name" validate:"required,max=128"`
	Category flexString `json:"category"`
}

type optionRequest struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type addQuestionRequest struct {
	Text    string          `json:"text" validate:"required"`
	Options []optionRequest `json:"options" validate:"required,min=2,dive"`
}

type importRequest struct {
	Count      int        `json:"count" validate:"required,min=1,max=50"`
	Category   flexString `json:"category"`
	Difficulty string     `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

type answerRequest struct {
	QuestionID      int64 `json:"questionId"`
	SelectedOptions []int `json:"selectedOptions"`
}

type submitRequest struct {
	Answers        []answerRequest `json:"answers" validate:"dive"`
	CompletionTime float64         `json:"completionTime" validate:"gte=0"`
}

func (r submitRequest) submissions() []domain.AnswerSubmission {
	out := make([]domain.AnswerSubmission, 0, len(r.Answers))
	for _, a := range r.Answers {
		selected := a.SelectedOptions
		if selected == nil {
			selected = []int{}
		}
		out = append(out, domain.AnswerSubmission{QuestionID: a.QuestionID, SelectedOptions: selected})
	}
	return out
}

type quizResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	CategoryID    int       `json:"categoryId"`
	Author        string    `json:"author"`
	IsSubmitted   bool      `json:"isSubmitted"`
	CreatedAt     time.Time `json:"createdAt"`
	QuestionCount *int      `json:"questionCount,omitempty"`
}

func toQuizResponse(q domain.Quiz) quizResponse {
	return quizResponse{
		ID:          q.ID,
		Name:        q.Name,
		Category:    q.Category.String(),
		CategoryID:  int(q.Category),
		Author:      q.AuthorUsername,
		IsSubmitted: q.IsSubmitted,
		CreatedAt:   q.CreatedAt,
	}
}

type quizQuestionsResponse struct {
	QuizID    string                `json:"quizId"`
	Name      string                `json:"name"`
	Category  string                `json:"category"`
	Questions []domain.QuestionView `json:"questions"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

type categoryResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type errorPayload struct {
	Message  string `json:"message"`
	Imported int    `json:"imported,omitempty"`
}
