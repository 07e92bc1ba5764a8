package result

import (
	"time"

	"github.com/eduaid/review-service/internal/domain"
)

type ReviewResult struct {
	Id             string
	ApplicationId  string
	StudentId      string
	OfficerId      string
	TaskType       *string
	Status         domain.ReviewStatus
	Score          *int
	Flags          *string
	Recommendation *string
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
