package models

// CoursePlan is the outline produced by the planning step.
type CoursePlan struct {
	Title    string        `json:"title"`
	Sections []SectionSpec `json:"sections"`
}

type SectionSpec struct {
	Title         string   `json:"title"`
	Complexity    Number   `json:"complexity"`
	AvailableTime Number   `json:"availableTime"`
	BulletCount   Number   `json:"bulletCount"`
	BulletTitles  []string `json:"bulletTitles"`
}

type ContentItem struct {
	ID           int      `json:"id"`
	IsDone       bool     `json:"isDone"`
	Title        string   `json:"title"`
	Bulletpoints []string `json:"bulletpoints"`
}

type TestItem struct {
	ID       int      `json:"id"`
	IsDone   bool     `json:"isDone"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Options  []string `json:"options"`
}

// SectionResult is a SectionSpec with its generated lessons and quiz.
type SectionResult struct {
	SectionSpec
	Content []ContentItem `json:"content"`
	Test    []TestItem    `json:"test"`
}

type Course struct {
	Topic    string          `json:"topic"`
	Level    string          `json:"level"`
	Language string          `json:"language"`
	Sections []SectionResult `json:"sections"`
}
