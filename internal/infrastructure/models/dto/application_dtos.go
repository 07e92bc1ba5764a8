package dto

import "github.com/eduaid/review-service/internal/domain"

type SetStatusDTO struct {
	Id     string
	Status domain.ApplicationStatus
	Notes  *string
}
