package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"application-generator/internal/domain"
)

const systemPrompt = "You are an expert career coach and professional resume writer. " +
	"Your task is to analyze a given resume and job description to create a perfectly tailored resume and a compelling cover letter. " +
	`The output should be a single JSON object with two keys: "resume" and "cover_letter". ` +
	"Both values should be strings formatted in Markdown. " +
	"Do not include any extra text outside of the JSON object."

// buildPromptMessages embeds both inputs verbatim; nothing is trimmed or escaped.
func buildPromptMessages(resumeText, jobDescription string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: buildUserPrompt(resumeText, jobDescription)},
	}
}

func buildUserPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(
		"Here is the resume: \n\n\"\"\"%s\"\"\"\n\nHere is the job description: \n\n\"\"\"%s\"\"\"",
		resumeText,
		jobDescription,
	)
}

// stripCodeFence removes a surrounding ``` or ```json fence, if any.
func stripCodeFence(raw string) string {
	clean := strings.TrimSpace(raw)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimPrefix(clean, "json")
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// parseCompletion validates that raw holds exactly one JSON value and returns
// it compacted but otherwise unchanged.
func parseCompletion(raw string) (json.RawMessage, error) {
	clean := stripCodeFence(raw)
	if clean == "" {
		return nil, errors.New("usecase: decode completion: empty content")
	}

	var value json.RawMessage
	dec := json.NewDecoder(strings.NewReader(clean))
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("usecase: decode completion: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, errors.New("usecase: decode completion: multiple JSON values")
		}
		return nil, fmt.Errorf("usecase: decode completion trailing data: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return nil, fmt.Errorf("usecase: compact completion: %w", err)
	}
	return buf.Bytes(), nil
}
