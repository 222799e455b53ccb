package slides

// ContentSchema is the JSON schema for slide deck content output.
var ContentSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "slide_content",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Presentation title",
				},
				"author": map[string]any{
					"type":        "string",
					"description": "Presentation author",
				},
				"sections": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"heading": map[string]any{"type": "string"},
							"content": map[string]any{
								"type":        "array",
								"items":       map[string]any{"type": "string"},
								"description": "Bullet points for one or more slides",
							},
						},
						"required":             []string{"heading", "content"},
						"additionalProperties": false,
					},
				},
				"citation": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"citation": map[string]any{"type": "string"},
						},
						"required":             []string{"citation"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []string{"title", "author", "sections"},
			"additionalProperties": false,
		},
	},
}
