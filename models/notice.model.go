package models

// Notice levels
const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a transient message for the customer, shown as a toast
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
