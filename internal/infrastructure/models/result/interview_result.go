package result

import (
	"time"

	"github.com/eduaid/review-service/internal/domain"
)

type InterviewResult struct {
	Id             string
	StudentId      string
	ApplicationId  string
	ScheduledAt    time.Time
	MeetingLink    *string
	Notes          *string
	Status         domain.InterviewStatus
	PanelMemberIds []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InterviewDetailsResult интервью вместе с панелью и всеми голосами
type InterviewDetailsResult struct {
	Interview *InterviewResult
	Decisions []*DecisionRow
}
