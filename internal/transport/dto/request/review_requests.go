package request

type AssignRequest struct {
	ApplicationId string  `json:"application_id" validate:"required,uuid"`
	StudentId     string  `json:"student_id" validate:"required,uuid"`
	OfficerId     string  `json:"officer_id" validate:"required,uuid"`
	TaskType      *string `json:"task_type,omitempty" validate:"omitempty,min=1,max=64"`
}

type ReassignRequest struct {
	ReviewId     string `json:"review_id" validate:"required,uuid"`
	NewOfficerId string `json:"new_officer_id" validate:"required,uuid"`
}

type CompleteRequest struct {
	ReviewId       string  `json:"review_id" validate:"required,uuid"`
	Score          *int    `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	Flags          *string `json:"flags,omitempty"`
	Recommendation *string `json:"recommendation,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

type UnassignRequest struct {
	ReviewId string `json:"review_id" validate:"required,uuid"`
}
