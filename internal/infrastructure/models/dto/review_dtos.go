package dto

type AssignReviewDTO struct {
	Id            string
	ApplicationId string
	StudentId     string
	OfficerId     string
	TaskType      *string
}

type ReassignReviewDTO struct {
	Id           string
	NewOfficerId string
	Notes        *string
}

type CompleteReviewDTO struct {
	Id             string
	Score          *int
	Flags          *string
	Recommendation *string
	Notes          *string
}
