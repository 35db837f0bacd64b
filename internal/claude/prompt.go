package claude

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/harrison/codescout/internal/models"
)

// DefaultPromptTemplate asks for a reference document about one directory.
const DefaultPromptTemplate = `You are researching one directory of a larger codebase.

Directory: {{.Directory}}
Absolute path: {{.AbsPath}}

Read the files in this directory (and its subdirectories) without modifying anything.
Write a concise reference document in Markdown that covers:

1. A level-1 heading naming the directory, followed by a one-paragraph summary of its purpose.
2. Key files and what each is responsible for.
3. Main types, functions or entry points, and how they are used.
4. Dependencies on other parts of the project and on external libraries.
5. Conventions, gotchas or patterns a new contributor should know.

Only report what you can see in the code. Output the document only, no preamble.`

// promptData is the value the template is executed against.
type promptData struct {
	Directory string
	AbsPath   string
	Format    string
}

// PromptBuilder renders the analyzer prompt for a task.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder parses text as a text/template. An empty text selects DefaultPromptTemplate.
func NewPromptBuilder(text string) (*PromptBuilder, error) {
	if text == "" {
		text = DefaultPromptTemplate
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, models.NewConfigError("claude.prompt_template", "invalid prompt template", err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// MustPromptBuilder is NewPromptBuilder for templates known to be valid.
func MustPromptBuilder(text string) *PromptBuilder {
	pb, err := NewPromptBuilder(text)
	if err != nil {
		panic(err)
	}
	return pb
}

// Build renders the prompt for task.
func (pb *PromptBuilder) Build(task models.ResearchTask) (string, error) {
	var buf bytes.Buffer
	data := promptData{
		Directory: task.Directory,
		AbsPath:   task.AbsPath,
		Format:    string(task.Format),
	}
	if err := pb.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt for %s: %w", task.Directory, err)
	}
	return buf.String(), nil
}
