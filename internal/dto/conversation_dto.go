package dto

// Event kinds accepted from the chat transports.
const (
	EventKindCommand  = "command"
	EventKindCallback = "callback"
	EventKindText     = "text"
	EventKindDocument = "document"
)

// ChatDocument carries an uploaded case file. Data is base64 on both
// transports; the service decodes it during case intake.
type ChatDocument struct {
	FileName string `json:"file_name" validate:"required"`
	Data     string `json:"data" validate:"required"` // base64
}

// ChatEvent is one user interaction: a command, a button callback, a text
// message, or a document upload.
type ChatEvent struct {
	UserID   int64         `json:"user_id" validate:"required"`
	ChatID   int64         `json:"chat_id"`
	Kind     string        `json:"kind" validate:"required,oneof=command callback text document"`
	Payload  string        `json:"payload"`
	Document *ChatDocument `json:"document,omitempty"`
}

// Choice is a button offered alongside a reply. Data is the callback
// identifier the client echoes back in a ChatEvent of kind "callback".
type Choice struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// ChatReply is one outbound message to the user.
type ChatReply struct {
	ChatID  int64    `json:"chat_id"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices,omitempty"`
}

// AnalysisCompletedMessage is the audit record published after every
// successful stage exchange.
type AnalysisCompletedMessage struct {
	UserID       int64  `json:"user_id"`
	Stage        int    `json:"stage"`
	InputLength  int    `json:"input_length"`
	OutputLength int    `json:"output_length"`
	Model        string `json:"model,omitempty"`
}
