package response

type ApplicationResponse struct {
	ApplicationId string  `json:"application_id"`
	StudentId     string  `json:"student_id"`
	Status        string  `json:"status"`
	Notes         *string `json:"notes,omitempty"`
	SubmittedAt   *string `json:"submitted_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}
