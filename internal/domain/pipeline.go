package domain

// Pipeline represents a CRM pipeline (e.g. the deals "Sales Pipeline").
type Pipeline struct {
	ID           string          `json:"id"`
	Label        string          `json:"label"`
	DisplayOrder int             `json:"displayOrder"`
	Stages       []PipelineStage `json:"stages"`
	Archived     bool            `json:"archived,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	UpdatedAt    string          `json:"updatedAt,omitempty"`
}

// PipelineStage represents a single stage within a pipeline.
type PipelineStage struct {
	ID           string            `json:"id,omitempty"`
	Label        string            `json:"label"`
	DisplayOrder int               `json:"displayOrder"`
	Metadata     map[string]string `json:"metadata"`
	Archived     bool              `json:"archived,omitempty"`
}

// PipelineInput is the creation payload for a pipeline. Stage metadata keeps
// only probability/isClosed/closeWon; everything else is portal-specific.
type PipelineInput struct {
	Label        string          `json:"label"`
	DisplayOrder int             `json:"displayOrder"`
	Stages       []PipelineStage `json:"stages"`
}

// CreationInput returns a PipelineInput with portal-specific fields stripped
// from the pipeline and its stages.
func (p *Pipeline) CreationInput() PipelineInput {
	in := PipelineInput{
		Label:        p.Label,
		DisplayOrder: p.DisplayOrder,
		Stages:       make([]PipelineStage, 0, len(p.Stages)),
	}
	for _, stage := range p.Stages {
		clean := PipelineStage{
			Label:        stage.Label,
			DisplayOrder: stage.DisplayOrder,
			Metadata:     map[string]string{},
		}
		for _, key := range []string{"probability", "isClosed", "closeWon"} {
			if v, ok := stage.Metadata[key]; ok {
				clean.Metadata[key] = v
			}
		}
		in.Stages = append(in.Stages, clean)
	}
	return in
}
