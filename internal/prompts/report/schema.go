package report

// ContentSchema is the JSON schema for report content output.
var ContentSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "report_content",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Report title",
				},
				"author": map[string]any{
					"type":        "string",
					"description": "Report author",
				},
				"abstract": map[string]any{
					"type":        "string",
					"description": "Detailed abstract summarizing the report",
				},
				"sections": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"heading": map[string]any{"type": "string"},
							"content": map[string]any{
								"type":        "string",
								"description": "Section prose",
							},
						},
						"required":             []string{"heading", "content"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []string{"title", "author", "sections"},
			"additionalProperties": false,
		},
	},
}
