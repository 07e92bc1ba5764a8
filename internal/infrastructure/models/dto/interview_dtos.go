package dto

import (
	"time"

	"github.com/eduaid/review-service/internal/domain"
)

type ScheduleInterviewDTO struct {
	Id             string
	StudentId      string
	ApplicationId  string
	ScheduledAt    time.Time
	MeetingLink    *string
	Notes          *string
	BoardMemberIds []string
}

// UpdateInterviewDTO nil-поля не изменяются; BoardMemberIds == nil значит панель не трогаем
type UpdateInterviewDTO struct {
	Id             string
	ScheduledAt    *time.Time
	MeetingLink    *string
	Notes          *string
	Status         *domain.InterviewStatus
	BoardMemberIds []string
}

type RecordDecisionDTO struct {
	InterviewId   string
	BoardMemberId string
	Decision      domain.Decision
	Comments      *string
}
