package models

import "time"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	Essay          QuestionType = "essay"
	ShortAnswer    QuestionType = "short_answer"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

type Subject struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
	TeacherID   *int    `json:"teacher_id,omitempty"`
}

type Topic struct {
	ID          int     `json:"id"`
	SubjectID   int     `json:"subject_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type Subtopic struct {
	ID      int    `json:"id"`
	TopicID int    `json:"topic_id"`
	Name    string `json:"name"`
}

type Question struct {
	ID         int             `json:"id"`
	TopicID    int             `json:"topic_id"`
	SubtopicID *int            `json:"subtopic_id,omitempty"`
	Type       QuestionType    `json:"type"`
	Text       string          `json:"text"`
	Options    []string        `json:"options,omitempty"`
	Answer     *string         `json:"answer,omitempty"`
	Difficulty DifficultyLevel `json:"difficulty"`
	Points     int             `json:"points"`
	CreatedBy  *int            `json:"created_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// QuestionView is a Question decorated with display names resolved from the
// topic and subject resources. Empty names mean the lookup failed.
type QuestionView struct {
	Question
	TopicName   string `json:"topic_name"`
	SubjectID   int    `json:"subject_id,omitempty"`
	SubjectName string `json:"subject_name"`
}

type TopicView struct {
	Topic
	SubjectName string `json:"subject_name"`
}
