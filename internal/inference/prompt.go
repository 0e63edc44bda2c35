// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"bytes"
	"strings"
	"text/template"
)

// classifyPromptTmpl asks the model for eight pole scores and a short
// reasoning, answered as a single JSON object.
var classifyPromptTmpl = template.Must(template.New("classify").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`You are classifying an artist into an eight-dimension personality space used to match artworks with viewers.

Score each pole from 0 to 100. The two poles of each axis must sum to 100.
- L (Lone) vs S (Social): is the work best experienced in solitude or shared with others?
- A (Abstract) vs R (Representational): abstract or figurative?
- E (Emotional) vs M (Meaning-driven): does it move viewers through feeling or through ideas and context?
- F (Flow) vs C (Constructive): free and intuitive, or structured and systematic?

Respond with a JSON object only, no other text:
{"axis_scores": [L, S, A, R, E, M, F, C], "reasoning": "two or three sentences"}

Example response:
{"axis_scores": [85, 15, 90, 10, 95, 5, 80, 20], "reasoning": "Expressive brushwork and intense colour invite solitary, emotional viewing."}

Artist: {{.Name}}
Nationality: {{if .Nationality}}{{.Nationality}}{{else}}unknown{{end}}
Era: {{if .Era}}{{.Era}}{{else}}unknown{{end}}
Lifespan: {{if .BirthYear}}{{.BirthYear}}{{else}}?{{end}} - {{if .DeathYear}}{{.DeathYear}}{{else}}?{{end}}
Movements: {{if .Movements}}{{join .Movements ", "}}{{else}}none recorded{{end}}
Artworks in collections: {{.ArtworkCount}}
Biography:
{{if .Bio}}{{.Bio}}{{else}}not available{{end}}
`))

// promptData dereferences optional years for the template.
type promptData struct {
	Request
	BirthYear int
	DeathYear int
}

// renderPrompt executes the classification prompt for req.
func renderPrompt(req Request) (string, error) {
	data := promptData{Request: req}
	if req.BirthYear != nil {
		data.BirthYear = *req.BirthYear
	}
	if req.DeathYear != nil {
		data.DeathYear = *req.DeathYear
	}
	var buf bytes.Buffer
	if err := classifyPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
