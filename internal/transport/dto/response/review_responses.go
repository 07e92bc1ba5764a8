package response

type ReviewResponse struct {
	ReviewId       string  `json:"review_id"`
	ApplicationId  string  `json:"application_id"`
	StudentId      string  `json:"student_id"`
	OfficerId      string  `json:"officer_id"`
	TaskType       *string `json:"task_type,omitempty"`
	Status         string  `json:"status"`
	Score          *int    `json:"score,omitempty"`
	Flags          *string `json:"flags,omitempty"`
	Recommendation *string `json:"recommendation,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type ReviewListResponse struct {
	Reviews []*ReviewResponse `json:"reviews"`
}
