package ai

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a helpful assistant for a contact management app. You extract and organize contact information."

func extractionPrompt(text string) string {
	return fmt.Sprintf(`Extract contact information from the following text. Return a JSON object with these fields if found:
- name (full name)
- phoneNumber (in E.164 format if possible)
- email
- description (any additional context or notes about the person)

Text: %s

JSON response:`, text)
}

func labelSuggestionPrompt(description string, existingNames []string) string {
	return fmt.Sprintf(`Based on this description of a contact, suggest up to 3 appropriate labels from the existing labels list. If none of the existing labels fit, suggest up to 2 new label names that would be appropriate.

Description: %s

Existing labels: %s

Return a JSON object with these fields:
- existingLabels: array of label names from the existing list
- newLabels: array of suggested new label names

JSON response:`, description, strings.Join(existingNames, ", "))
}

// removeCodeBlocks strips a markdown fence around a JSON reply, if present.
func removeCodeBlocks(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
