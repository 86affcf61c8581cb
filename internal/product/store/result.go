package store

const (
	MsgFillAllFields = "Please fill in all fields."
	MsgNetworkError  = "Network error occurred."
	MsgCreated       = "Product created successfully"
	MsgFetchFailed   = "Failed to fetch products."
	MsgCreateFailed  = "Failed to create product."
)

// Result is the outcome of a store operation. Data holds the created or updated
// product when the operation returns one.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func failure(message string) Result {
	return Result{Success: false, Message: message}
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
