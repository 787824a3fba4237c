package models

import "time"

type ExamStatus string

const (
	ExamDraft     ExamStatus = "DRAFT"
	ExamPublished ExamStatus = "PUBLISHED"
	ExamClosed    ExamStatus = "CLOSED"
)

type Exam struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	SubjectID    int        `json:"subject_id"`
	TeacherID    *int       `json:"teacher_id,omitempty"`
	Status       ExamStatus `json:"status"`
	Duration     int        `json:"duration"` // minutes
	QuestionIDs  []int      `json:"question_ids,omitempty"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	IsApproved   bool       `json:"is_approved"`
	PassingScore *float64   `json:"passing_score,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ExamStudent links a student to an exam they are enrolled in.
type ExamStudent struct {
	ID        int      `json:"id"`
	ExamID    int      `json:"exam_id"`
	StudentID int      `json:"student_id"`
	Score     *float64 `json:"score,omitempty"`
	Status    string   `json:"status"`
}

type ApprovedExam struct {
	ID         int       `json:"id"`
	ExamID     int       `json:"exam_id"`
	ApprovedBy int       `json:"approved_by"`
	Comment    *string   `json:"comment,omitempty"`
	ApprovedAt time.Time `json:"approved_at"`
}

type Parameter struct {
	ID          int     `json:"id"`
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Description *string `json:"description,omitempty"`
}
