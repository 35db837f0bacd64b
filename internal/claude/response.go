package claude

import (
	"encoding/json"
	"errors"
	"strings"
)

// Response is the decoded envelope printed by `claude --output-format json`.
type Response struct {
	Content   string
	SessionID string
	IsError   bool
}

// envelope covers both the current ("result") and older ("content") CLI layouts.
type envelope struct {
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	Result    string `json:"result"`
	Content   string `json:"content"`
	Error     string `json:"error"`
	IsError   bool   `json:"is_error"`
	SessionID string `json:"session_id"`
}

// ErrNoJSON is returned when the output contains no JSON object at all.
var ErrNoJSON = errors.New("no JSON object in output")

// ParseResponse decodes raw CLI stdout. Output with prose around the JSON
// object (warnings printed before it, for example) is tolerated.
func ParseResponse(raw []byte) (*Response, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, ErrNoJSON
	}

	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		extracted := ExtractJSON(trimmed)
		if extracted == "" {
			return nil, ErrNoJSON
		}
		if err := json.Unmarshal([]byte(extracted), &env); err != nil {
			return nil, err
		}
	}

	content := env.Result
	if content == "" {
		content = env.Content
	}
	isError := env.IsError || env.Subtype == "error" || strings.HasPrefix(env.Subtype, "error_")
	if env.Error != "" {
		isError = true
		if content == "" {
			content = env.Error
		}
	}

	return &Response{
		Content:   content,
		SessionID: env.SessionID,
		IsError:   isError,
	}, nil
}

// ExtractJSON attempts to extract a JSON object from mixed content.
// It finds the first '{' and last '}' to extract the JSON substring.
// Returns empty string if no valid JSON boundaries found.
func ExtractJSON(content string) string {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return ""
}
