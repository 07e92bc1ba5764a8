package request

type ScheduleRequest struct {
	StudentId      string   `json:"student_id" validate:"required,uuid"`
	ApplicationId  string   `json:"application_id" validate:"required,uuid"`
	ScheduledAt    string   `json:"scheduled_at" validate:"required"`
	MeetingLink    *string  `json:"meeting_link,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	BoardMemberIds []string `json:"board_member_ids" validate:"required,min=1,dive,uuid"`
}

// UpdateInterviewRequest nil-поля не изменяются; BoardMemberIds != nil
// заменяет панель целиком
type UpdateInterviewRequest struct {
	InterviewId    string   `json:"interview_id" validate:"required,uuid"`
	ScheduledAt    *string  `json:"scheduled_at,omitempty"`
	MeetingLink    *string  `json:"meeting_link,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	Status         *string  `json:"status,omitempty"`
	BoardMemberIds []string `json:"board_member_ids,omitempty" validate:"omitempty,min=1,dive,uuid"`
}

type GetInterviewRequest struct {
	InterviewId string `json:"interview_id" validate:"required,uuid"`
}

type RecordDecisionRequest struct {
	InterviewId   string  `json:"interview_id" validate:"required,uuid"`
	BoardMemberId string  `json:"board_member_id" validate:"required,uuid"`
	Decision      string  `json:"decision" validate:"required"`
	Comments      *string `json:"comments,omitempty"`
}

type ListDecisionsRequest struct {
	InterviewId string `json:"interview_id" validate:"required,uuid"`
}
