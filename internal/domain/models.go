package domain

import "time"

// User is a registered account. Attempts and quizzes reference it by username.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Quiz is a named, categorized collection of questions authored by one user.
type Quiz struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       Category  `json:"category"`
	AuthorUsername string    `json:"author"`
	IsSubmitted    bool      `json:"isSubmitted"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AnswerOption is one selectable choice. Position is its option index.
type AnswerOption struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"questionId"`
	Position   int    `json:"position"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"isCorrect"`
}

// Question models an MCQ question; one or more options may be correct.
type Question struct {
	ID      int64          `json:"id"`
	QuizID  string         `json:"quizId"`
	Text    string         `json:"text"`
	Options []AnswerOption `json:"options"`
}

// OptionInput is a caller-supplied option for a new question.
type OptionInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// UserAttempt is one scored run of a user through a quiz.
type UserAttempt struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	QuizID         string    `json:"quizId"`
	StartedAt      time.Time `json:"startedAt"`
	Score          int       `json:"score"`
	CompletionTime float64   `json:"completionTime"`
}

// UserAnswer records the option indices selected for one question of an attempt.
type UserAnswer struct {
	AttemptID       int64     `json:"attemptId"`
	QuestionID      int64     `json:"questionId"`
	SelectedOptions []int     `json:"selectedOptions"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// AnswerSubmission models one answer sent by a client.
type AnswerSubmission struct {
	QuestionID      int64 `json:"questionId"`
	SelectedOptions []int `json:"selectedOptions"`
}

// SubmissionResult summarizes a scored attempt for the submitter.
type SubmissionResult struct {
	QuizID         string  `json:"quizId"`
	AttemptID      int64   `json:"attemptId"`
	Score          int     `json:"score"`
	Total          int     `json:"total"`
	CompletionTime float64 `json:"completionTime"`
	Rank           int     `json:"rank"`
}

// LeaderboardEntry is one ranked attempt.
type LeaderboardEntry struct {
	AttemptID      int64     `json:"attemptId"`
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	CompletionTime float64   `json:"completionTime"`
	Date           time.Time `json:"date"`
}

// Leaderboard captures the ordered attempts for a quiz.
type Leaderboard struct {
	QuizID   string             `json:"quizId"`
	QuizName string             `json:"quizName"`
	Entries  []LeaderboardEntry `json:"entries"`
}

// QuizInfo is quiz metadata plus its current question count.
type QuizInfo struct {
	Quiz
	QuestionCount int `json:"questionCount"`
}

// QuestionView is the player-facing rendering of a question.
type QuestionView struct {
	ID             int64    `json:"id"`
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	CorrectOptions []int    `json:"correctOptions"`
}

// QuizQuestions lists a quiz's questions in creation order.
type QuizQuestions struct {
	QuizID    string         `json:"quizId"`
	Name      string         `json:"name"`
	Category  Category       `json:"category"`
	Questions []QuestionView `json:"questions"`
}

// TriviaQuery is a request for a batch of provider questions. Zero values mean no filter.
type TriviaQuery struct {
	Amount     int
	Category   Category
	Difficulty string
	Type       string
}

// TriviaItem is one question as returned by the trivia provider.
type TriviaItem struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// AttemptDetail is a stored attempt with the answers exactly as submitted.
type AttemptDetail struct {
	UserAttempt
	Answers []UserAnswer `json:"answers"`
}
