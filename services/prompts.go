package services

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"course_gen_backend/models"
)

func summarizePrompt(files []models.Attachment, language string) string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return fmt.Sprintf(`
**Role:** You are a very detailed file summarizer.

**Task:** Summarize these files %s very detailed without ignoring any of its content in "%s" language.

**Output only the summary (NO Extra explanation)**
`, strings.Join(names, ", "), language)
}

func planPrompt(req models.CourseRequest, sectionsCount int, sources string) string {
	var b strings.Builder
	b.WriteString("\n**Role:** Course Structure Designer for a mobile learning app.\n\n")
	fmt.Fprintf(&b, "**Task:** Design a course on %q for a learner at level %s/10. The learner has %d minutes total and prefers to learn in %q language.\n",
		req.Topic, req.Level, req.Time, req.Language)
	if sources != "" {
		fmt.Fprintf(&b, "**IMPORTANT:** The content strictly base on the provided content! Use it as sources only: %s\n", sources)
	}
	fmt.Fprintf(&b, `
**Course Structure Requirements:**
* **Sections:** %d sections
* **Language Tone:**
    * Simple language for low levels.
    * Complex language for high levels.
* **Titles:** Course title and section titles must be in %q.
* **Flow:**
    * Start with an "Introduction" section.
    * Progress from easier to harder topics.
    * Avoid duplicated content.
    * Final section: "Summary" or "Review" of the course.
* **Time Allocation:** Smartly allocate available time across sections based on complexity.

**Each Section Must Include (JSON Fields):**
* "title": A short, clear section title.
* "complexity": 1 (easy) to 5 (hard).
* "availableTime": Time allocated in minutes.
* "bulletCount": Number of content blocks.
* "bulletTitles": Titles of content blocks (array of strings).

**Output Format (Strict JSON Object Only):**
`+"```json"+`
{
    "title": "a one word title which explains the topic ONLY",
    "sections": [
        {
            "title": "Section Title",
            "complexity": 1,
            "availableTime": 10,
            "bulletCount": 3,
            "bulletTitles": ["first bulletTitle", "second bulletTitle"]
        }
    ]
}
`+"```"+`
`, sectionsCount, req.Language)
	return b.String()
}

func sectionPrompt(section models.SectionSpec, bulletCount int, level, language, topic, sources string) string {
	quoted := make([]string, 0, len(section.BulletTitles))
	for _, t := range section.BulletTitles {
		quoted = append(quoted, fmt.Sprintf("%q", t))
	}

	var b strings.Builder
	b.WriteString("\n**Role:** Mobile Course Content Generator.\n\n")
	fmt.Fprintf(&b, "**Task:** Create a course section for a level %s/10 learner.\n", level)
	if sources != "" {
		fmt.Fprintf(&b, "**IMPORTANT:** The content strictly base on the provided source! Use it as sources only: {%s}\n", sources)
	}
	fmt.Fprintf(&b, `
**Section Details:**
* **Title:** %q
* **Topic:** %q
* **Language:** %q
* **Language Tone:**
    * Simple language for low levels.
    * Complex language for high levels.
**Content Generation Rules:**
* Generate **exactly %d content items**.
* Use the provided content titles: **%s**.
* Each content item must include:
    * Its given title.
    * **2 to 4 short paragraphs** explaining the concept, provided as strings within a "bulletpoints" array.
* Use **clear, mobile-friendly language**.
* All content (titles, bulletpoints) must be in %q.

**Quiz Generation Rules:**
* Generate **exactly %d multiple-choice quiz questions**, one per content item.
* Each question must have **4 options**: 1 correct and 3 incorrect.
* All questions and answers must be in %q.

**Output Format (Strict JSON Object Only):**
`+"```json"+`
{
  "title": "Section Title",
  "content": [
    {
      "title": "The title given",
      "bulletpoints": ["Para1", "Para2", "..."]
    }
  ],
  "test": [
    {
      "question": "Question?",
      "answer": "Correct",
      "options": ["Correct", "Wrong", "Wrong", "Wrong"]
    }
  ]
}
`+"```"+`
`, section.Title, topic, language, bulletCount, strings.Join(quoted, ", "), language, bulletCount, language)
	return b.String()
}

func regeneratePrompt(language, level string, bulletpoints []string) (string, error) {
	input, err := json.MarshalIndent(bulletpoints, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal bulletpoints: %w", err)
	}
	return fmt.Sprintf(`
**Role:** Educational Mobile Content Rewriting Engine.

**Task:** Rewrite the following bulletpoints.

**Instructions:**
* Rewrite the provided bulletpoints in **%s** for a learner at **level %s/10**.
* **Crucially, maintain the original meaning and all information.**
* Ensure the rewritten content uses **mobile-friendly, clear language**.
* Answer with a JSON array of strings only, one string per bulletpoint.

**Input Bulletpoints (JSON array of strings):**
`+"```json"+`
%s
`+"```"+`
`, language, level, input), nil
}
