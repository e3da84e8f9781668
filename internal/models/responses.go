package models

type ErrorBody struct {
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Details []string `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type AuthResponse struct {
	Message string     `json:"message"`
	User    PublicUser `json:"user"`
	Token   string     `json:"token"`
}

type VerifyResponse struct {
	User PublicUser `json:"user"`
}

type TasksResponse struct {
	Message string  `json:"message"`
	Tasks   []*Task `json:"tasks"`
}

type TaskResponse struct {
	Message string `json:"message"`
	Task    *Task  `json:"task"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
