package request

type SubmitRequest struct {
	ApplicationId string `json:"application_id" validate:"required,uuid"`
}

type SetStatusRequest struct {
	ApplicationId string  `json:"application_id" validate:"required,uuid"`
	Status        string  `json:"status" validate:"required"`
	Reason        *string `json:"reason,omitempty"`
}

type GetApplicationRequest struct {
	ApplicationId string `json:"application_id" validate:"required,uuid"`
}
