package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type createTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status      string `json:"status"      validate:"omitempty,oneof=TODO IN_PROGRESS ON_HOLD COMPLETED"`
	Category    string `json:"category"    validate:"max=50"`
	// DueDate is RFC 3339 or a plain YYYY-MM-DD date.
	DueDate string `json:"dueDate"`
}

// updateTaskRequest uses pointers so absent fields stay unchanged; an empty
// string clears description, category or dueDate.
type updateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status      *string `json:"status"      validate:"omitempty,oneof=TODO IN_PROGRESS ON_HOLD COMPLETED"`
	Category    *string `json:"category"    validate:"omitempty,max=50"`
	DueDate     *string `json:"dueDate"`
}

type createTodoRequest struct {
	Task string `json:"task" validate:"required,max=255"`
}

type updateTodoRequest struct {
	Task      *string `json:"task"      validate:"omitempty,max=255"`
	Completed *bool   `json:"completed"`
}
