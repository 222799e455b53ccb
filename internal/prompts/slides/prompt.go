// Package slides holds the prompt and content schema for Beamer slide
// deck generation.
package slides

import (
	"bytes"
	_ "embed"
	"text/template"
)

// MaxBulletsPerSlide is the bullet budget communicated to the model; the
// renderer does not re-split overfull sections.
const MaxBulletsPerSlide = 4

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// Data fills the slide prompt template.
type Data struct {
	Papers    string
	Template  string
	Citations string
}

// UserPrompt builds the user prompt for slide deck generation.
func UserPrompt(data Data) (string, error) {
	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
