package result

import (
	"time"

	"github.com/eduaid/review-service/internal/domain"
)

type ApplicationResult struct {
	Id          string
	StudentId   string
	Status      domain.ApplicationStatus
	Notes       *string
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
