package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoJSONObject = errors.New("no JSON object in reply")

const (
	defaultSummary = "No summary available"
	defaultSubject = "General"
	failedSummary  = "Failed to extract topics and summarize content"
)

// Analysis is the model's reading of a set of notes.
type Analysis struct {
	Topics     []string `json:"topics" yaml:"topics"`
	Summary    string   `json:"summary" yaml:"summary"`
	Subject    string   `json:"subject" yaml:"subject"`
	CourseCode string   `json:"courseCode,omitempty" yaml:"course_code,omitempty"`
}

// DefaultAnalysis is returned when the model's reply cannot be used.
func DefaultAnalysis() Analysis {
	return Analysis{
		Topics:  []string{},
		Summary: failedSummary,
		Subject: defaultSubject,
	}
}

// decodeReply unmarshals a model reply into v. It is lenient and tries the
// raw reply, the reply without markdown fences, and finally the outermost
// {...} span before giving up.
func decodeReply(raw string, v any) error {
	raw = strings.TrimSpace(raw)

	// Strip markdown code fences if present
	if strings.HasPrefix(raw, "```") {
		lines := strings.SplitN(raw, "\n", 2)
		if len(lines) > 1 {
			raw = lines[1]
		}
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}

	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return errNoJSONObject
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), v); err != nil {
		return fmt.Errorf("unmarshal reply JSON: %w", err)
	}
	return nil
}

// parseAnalysis decodes an analysis reply and fills in defaults for missing
// fields.
func parseAnalysis(raw string) (Analysis, error) {
	var reply struct {
		Topics     json.RawMessage `json:"topics"`
		Summary    *string         `json:"summary"`
		Subject    *string         `json:"subject"`
		CourseCode *string         `json:"courseCode"`
	}
	if err := decodeReply(raw, &reply); err != nil {
		return Analysis{}, err
	}

	a := Analysis{
		Topics:  []string{},
		Summary: defaultSummary,
		Subject: defaultSubject,
	}
	// A non-array topics field is treated as no topics.
	var topics []string
	if json.Unmarshal(reply.Topics, &topics) == nil {
		for _, t := range topics {
			if t = strings.TrimSpace(t); t != "" {
				a.Topics = append(a.Topics, t)
			}
		}
	}
	if reply.Summary != nil && *reply.Summary != "" {
		a.Summary = *reply.Summary
	}
	if reply.Subject != nil && *reply.Subject != "" {
		a.Subject = *reply.Subject
	}
	if reply.CourseCode != nil && *reply.CourseCode != "" && !strings.EqualFold(*reply.CourseCode, "null") {
		a.CourseCode = *reply.CourseCode
	}
	return a, nil
}
