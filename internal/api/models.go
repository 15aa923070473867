package api

// TopicExplainRequest scopes an explanation task to one topic.
type TopicExplainRequest struct {
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
	Subject    string `json:"subject"     validate:"required"`
	Topic      string `json:"topic"       validate:"required"`
}

// SubjectExplainRequest scopes an explanation task to every topic of one subject.
type SubjectExplainRequest struct {
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
	Subject    string `json:"subject"     validate:"required"`
}

// TaskStartedResponse acknowledges an accepted task submission.
type TaskStartedResponse struct {
	Status string `json:"status"`
	TaskID string `json:"task_id"`
}

// CountResponse carries one synchronous count result.
type CountResponse struct {
	Count int `json:"count"`
}

// HealthResponse reports service liveness and database connectivity.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
