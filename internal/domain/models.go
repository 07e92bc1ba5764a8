package domain

import "time"

type ApplicationStatus string

const (
	StatusDraft              ApplicationStatus = "DRAFT"
	StatusPending            ApplicationStatus = "PENDING"
	StatusProcessing         ApplicationStatus = "PROCESSING"
	StatusApproved           ApplicationStatus = "APPROVED"
	StatusRejected           ApplicationStatus = "REJECTED"
	StatusInterviewScheduled ApplicationStatus = "INTERVIEW_SCHEDULED"
	StatusBoardApproved      ApplicationStatus = "BOARD_APPROVED"
	StatusInterviewCompleted ApplicationStatus = "INTERVIEW_COMPLETED"
)

// ParseApplicationStatus проверяет, что строка является допустимым статусом заявки
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	switch ApplicationStatus(s) {
	case StatusDraft, StatusPending, StatusProcessing, StatusApproved,
		StatusRejected, StatusInterviewScheduled, StatusBoardApproved, StatusInterviewCompleted:
		return ApplicationStatus(s), true
	}
	return "", false
}

// IsTerminal терминальные статусы заявки
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusBoardApproved, StatusInterviewCompleted:
		return true
	}
	return false
}

// IsAdminAssignable статусы, которые админ может выставить напрямую
func (s ApplicationStatus) IsAdminAssignable() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "PENDING"
	ReviewCompleted ReviewStatus = "COMPLETED"
)

type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "SCHEDULED"
	InterviewCompleted InterviewStatus = "COMPLETED"
)

// ParseInterviewStatus проверяет, что строка является допустимым статусом интервью
func ParseInterviewStatus(s string) (InterviewStatus, bool) {
	switch InterviewStatus(s) {
	case InterviewScheduled, InterviewCompleted:
		return InterviewStatus(s), true
	}
	return "", false
}

type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
	DecisionAbstain Decision = "ABSTAIN"
)

// ParseDecision проверяет, что строка является допустимым голосом
func ParseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject, DecisionAbstain:
		return Decision(s), true
	}
	return "", false
}

// PanelOutcome правило большинства: одобрение только при строгом большинстве,
// воздержавшиеся не считаются, ничья трактуется как не-одобрение
func PanelOutcome(approvals, rejections int) ApplicationStatus {
	if approvals > rejections {
		return StatusBoardApproved
	}
	return StatusInterviewCompleted
}

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleFieldOfficer Role = "FIELD_OFFICER"
	RoleStudent      Role = "STUDENT"
)

// Actor идентичность вызывающего, приходит из внешнего слоя авторизации
type Actor struct {
	UserId string
	Role   Role
}

type User struct {
	Id        string
	Name      string
	Email     string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
}

type Student struct {
	Id        string
	Name      string
	Email     string
	CreatedAt time.Time
}

type Application struct {
	Id          string
	StudentId   string
	Status      ApplicationStatus
	Notes       *string
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type FieldReview struct {
	Id             string
	ApplicationId  string
	StudentId      string
	OfficerId      string
	TaskType       *string
	Status         ReviewStatus
	Score          *int
	Flags          *string
	Recommendation *string
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type BoardMember struct {
	Id        string
	Name      string
	Email     string
	Title     string
	IsActive  bool
	CreatedAt time.Time
}

type Interview struct {
	Id            string
	StudentId     string
	ApplicationId string
	ScheduledAt   time.Time
	MeetingLink   *string
	Notes         *string
	Status        InterviewStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type InterviewPanelMember struct {
	InterviewId   string
	BoardMemberId string
	AddedAt       time.Time
}

type InterviewDecision struct {
	InterviewId   string
	BoardMemberId string
	Decision      Decision
	Comments      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
