package models

// LoginRequest is the password login payload.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=1"`
	Next     string `json:"next" form:"next"`
}

type LoginResponse struct {
	User     User   `json:"user"`
	Redirect string `json:"redirect"`
}

type UserCreateRequest struct {
	FullName      string   `json:"full_name" validate:"required,min=1,max=150"`
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required,min=6"`
	Role          UserRole `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT"`
	IsHeadTeacher bool     `json:"is_head_teacher"`
}

type UserUpdateRequest struct {
	FullName      *string   `json:"full_name,omitempty" validate:"omitempty,min=1,max=150"`
	Email         *string   `json:"email,omitempty" validate:"omitempty,email"`
	Role          *UserRole `json:"role,omitempty" validate:"omitempty,oneof=ADMIN TEACHER STUDENT"`
	IsHeadTeacher *bool     `json:"is_head_teacher,omitempty"`
	Active        *bool     `json:"active,omitempty"`
}

type SubjectRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=150"`
	Code        *string `json:"code,omitempty" validate:"omitempty,max=30"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	TeacherID   *int    `json:"teacher_id,omitempty"`
}

type TopicRequest struct {
	SubjectID   int     `json:"subject_id" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required,min=1,max=150"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type SubtopicRequest struct {
	TopicID int    `json:"topic_id" validate:"required,gt=0"`
	Name    string `json:"name" validate:"required,min=1,max=150"`
}

type QuestionRequest struct {
	TopicID    int             `json:"topic_id" validate:"required,gt=0"`
	SubtopicID *int            `json:"subtopic_id,omitempty"`
	Type       QuestionType    `json:"type" validate:"required,oneof=multiple_choice true_false essay short_answer"`
	Text       string          `json:"text" validate:"required,min=1,max=4000"`
	Options    []string        `json:"options,omitempty" validate:"omitempty,max=10,dive,min=1,max=500"`
	Answer     *string         `json:"answer,omitempty"`
	Difficulty DifficultyLevel `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Points     int             `json:"points" validate:"required,min=1,max=100"`
}

type ExamRequest struct {
	Title        string   `json:"title" validate:"required,min=1,max=200"`
	SubjectID    int      `json:"subject_id" validate:"required,gt=0"`
	Duration     int      `json:"duration" validate:"required,min=5,max=600"`
	QuestionIDs  []int    `json:"question_ids,omitempty"`
	PassingScore *float64 `json:"passing_score,omitempty" validate:"omitempty,min=0,max=100"`
}

type AnswerSubmitRequest struct {
	Answers []AnswerItem `json:"answers" validate:"required,min=1,dive"`
}

type AnswerItem struct {
	QuestionID int    `json:"question_id" validate:"required,gt=0"`
	Response   string `json:"response"`
}

type GradeRequest struct {
	Score    float64 `json:"score" validate:"min=0"`
	Feedback *string `json:"feedback,omitempty" validate:"omitempty,max=2000"`
}

type ReevaluationCreateRequest struct {
	AnswerID int    `json:"answer_id" validate:"required,gt=0"`
	Reason   string `json:"reason" validate:"required,min=5,max=2000"`
}

type ReevaluationResolveRequest struct {
	Status     ReevaluationStatus `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
	NewScore   *float64           `json:"new_score,omitempty" validate:"omitempty,min=0"`
	Resolution *string            `json:"resolution,omitempty" validate:"omitempty,max=2000"`
}

type ApproveExamRequest struct {
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

type ParameterUpdateRequest struct {
	Value string `json:"value" validate:"required"`
}

// AdminOverview is the admin landing view.
type AdminOverview struct {
	Users    int `json:"users"`
	Teachers int `json:"teachers"`
	Students int `json:"students"`
	Subjects int `json:"subjects"`
	Exams    int `json:"exams"`
}

// TeacherOverview is the landing view for teachers and head teachers.
type TeacherOverview struct {
	User                 User      `json:"user"`
	Subjects             []Subject `json:"subjects"`
	Exams                []Exam    `json:"exams"`
	PendingReevaluations int       `json:"pending_reevaluations"`
	PendingApprovals     *int      `json:"pending_approvals,omitempty"`
}

type StudentOverview struct {
	User  User   `json:"user"`
	Exams []Exam `json:"exams"`
}
