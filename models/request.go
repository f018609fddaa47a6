package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Attachment is an uploaded source document held in memory.
type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

type CourseRequest struct {
	Topic     string
	Level     string
	Time      int
	Language  string
	RequestID string
	Files     []Attachment

	// JobID identifies one accepted run. Set by the orchestrator; a client
	// may reuse RequestID across runs.
	JobID string
}

// Missing lists the required fields that are absent. Either a topic or at
// least one file must be present.
func (r CourseRequest) Missing() []string {
	var missing []string
	if strings.TrimSpace(r.Topic) == "" && len(r.Files) == 0 {
		missing = append(missing, "topic")
	}
	if strings.TrimSpace(r.Level) == "" {
		missing = append(missing, "level")
	}
	if r.Time <= 0 {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(r.Language) == "" {
		missing = append(missing, "language")
	}
	if strings.TrimSpace(r.RequestID) == "" {
		missing = append(missing, "requestId")
	}
	return missing
}

// Level accepts both `"level": 5` and `"level": "5"`.
type Level string

func (l *Level) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Level(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("level must be a string or number, got %s", data)
	}
	*l = Level(data)
	return nil
}

type RegenerateLessonReq struct {
	Language     string   `json:"language"`
	Level        Level    `json:"level"`
	Bulletpoints []string `json:"bulletpoints"`
}

type RegenerateLessonResp struct {
	NewBulletpoints []string `json:"newBulletpoints"`
}
