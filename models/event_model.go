package models

type ProgressEventType string

const (
	EventProcessing ProgressEventType = "PROCESSING"
	EventPlanning   ProgressEventType = "PLANING"
	EventProgress   ProgressEventType = "PROGRESS"
	EventDone       ProgressEventType = "DONE"
	EventCanceled   ProgressEventType = "CANCELED"
	EventError      ProgressEventType = "ERROR"
)

// ProgressEvent is pushed to the websocket registered for a request.
// SectionTitle doubles as the message slot for ERROR and CANCELED events.
type ProgressEvent struct {
	Type         ProgressEventType `json:"type"`
	Current      int               `json:"current"`
	Total        int               `json:"total"`
	SectionTitle string            `json:"sectionTitle"`
	Error        bool              `json:"error"`
	Done         bool              `json:"done"`
}

// websocket message types
const (
	WSMessageRegister    = "register"
	WSMessageCancel      = "cancel"
	WSMessageCanceledAck = "CANCELED-ACK"
)

type WSMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
}

// ProgressEnvelope carries an event between instances over pub/sub.
type ProgressEnvelope struct {
	RequestID string        `json:"requestId"`
	Event     ProgressEvent `json:"event"`
}
