package models

// Message roles accepted by the model runtime
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ModelMessage is one entry of the conversation sent to a provider
type ModelMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64 payloads, user role only
}

// ImageData is an image attachment as uploaded by the browser
type ImageData struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Base64   string `json:"base64"`
}

// Attachment describes a non-image upload; only its metadata reaches the model
type Attachment struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// ModelResponse is the terminal result of a provider call or of a whole orchestration.
// Success implies Content is set, failure implies Error is set.
type ModelResponse struct {
	Success   bool   `json:"success"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
	ModelUsed string `json:"model_used,omitempty"`
}

// Succeeded builds a successful response
func Succeeded(content, modelUsed string) ModelResponse {
	return ModelResponse{Success: true, Content: content, ModelUsed: modelUsed}
}

// Failed builds a failed response
func Failed(err, modelUsed string) ModelResponse {
	return ModelResponse{Success: false, Error: err, ModelUsed: modelUsed}
}

// ChatRequest is the JSON body accepted by POST /api/chat
type ChatRequest struct {
	UserInput   string       `json:"userInput" validate:"required,notblank"`
	Images      []ImageData  `json:"images,omitempty" validate:"omitempty,dive"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// ChatResponse is the JSON body returned by POST /api/chat
type ChatResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response,omitempty"`
	ModelUsed string `json:"model_used,omitempty"`
	Error     string `json:"error,omitempty"`
}
