// Package report holds the prompt and content schema for IEEE-style
// report generation.
package report

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// Data fills the report prompt template.
type Data struct {
	Papers    string
	Template  string
	Citations string
}

// UserPrompt builds the user prompt for report generation.
func UserPrompt(data Data) (string, error) {
	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
