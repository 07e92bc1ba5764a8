package response

type InterviewResponse struct {
	InterviewId    string   `json:"interview_id"`
	StudentId      string   `json:"student_id"`
	ApplicationId  string   `json:"application_id"`
	ScheduledAt    string   `json:"scheduled_at"`
	MeetingLink    *string  `json:"meeting_link,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	Status         string   `json:"status"`
	PanelMemberIds []string `json:"panel_member_ids"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

type InterviewDetailsResponse struct {
	Interview *InterviewResponse     `json:"interview"`
	Panel     []*PanelMemberResponse `json:"panel"`
	Decisions []*DecisionResponse    `json:"decisions"`
}

type PanelMemberResponse struct {
	BoardMemberId string `json:"board_member_id"`
	Name          string `json:"name"`
	Title         string `json:"title,omitempty"`
}

type DecisionResponse struct {
	InterviewId   string  `json:"interview_id"`
	BoardMemberId string  `json:"board_member_id"`
	Decision      string  `json:"decision"`
	Comments      *string `json:"comments,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type RecordDecisionResponse struct {
	Decision          *DecisionResponse `json:"decision"`
	PanelCompleted    bool              `json:"panel_completed"`
	Outcome           string            `json:"outcome,omitempty"`
	ApplicationStatus string            `json:"application_status,omitempty"`
}

type DecisionListResponse struct {
	Decisions []*DecisionResponse `json:"decisions"`
}
