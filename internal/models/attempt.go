package models

import "time"

type ReevaluationStatus string

const (
	ReevaluationPending  ReevaluationStatus = "PENDING"
	ReevaluationAccepted ReevaluationStatus = "ACCEPTED"
	ReevaluationRejected ReevaluationStatus = "REJECTED"
)

type Answer struct {
	ID         int       `json:"id"`
	ExamID     int       `json:"exam_id"`
	QuestionID int       `json:"question_id"`
	StudentID  int       `json:"student_id"`
	Response   string    `json:"response"`
	Score      *float64  `json:"score,omitempty"`
	Feedback   *string   `json:"feedback,omitempty"`
	AnsweredAt time.Time `json:"answered_at"`
}

type Reevaluation struct {
	ID         int                `json:"id"`
	AnswerID   int                `json:"answer_id"`
	ExamID     int                `json:"exam_id"`
	StudentID  int                `json:"student_id"`
	Reason     string             `json:"reason"`
	Status     ReevaluationStatus `json:"status"`
	NewScore   *float64           `json:"new_score,omitempty"`
	Resolution *string            `json:"resolution,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// ReportRow is one line of a backend report. Columns are report-specific and
// kept in backend order.
type ReportRow map[string]any

type Report struct {
	Kind    string      `json:"kind"`
	Title   string      `json:"title"`
	Columns []string    `json:"columns"`
	Rows    []ReportRow `json:"rows"`
}
