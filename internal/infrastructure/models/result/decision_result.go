package result

import (
	"time"

	"github.com/eduaid/review-service/internal/domain"
)

type DecisionRow struct {
	InterviewId   string
	BoardMemberId string
	Decision      domain.Decision
	Comments      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DecisionResult итог записи голоса: если панель проголосовала полностью,
// Completed=true и Outcome содержит вычисленный статус заявки
type DecisionResult struct {
	Row           *DecisionRow
	ApplicationId string
	StudentId     string
	Completed     bool
	Outcome       domain.ApplicationStatus
	Approvals     int
	Rejections    int
	PanelSize     int
}
