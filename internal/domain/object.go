package domain

// Object represents a CRM object record (contact, company, deal, etc.).
type Object struct {
	ID           string                        `json:"id"`
	Properties   map[string]string             `json:"properties"`
	CreatedAt    string                        `json:"createdAt,omitempty"`
	UpdatedAt    string                        `json:"updatedAt,omitempty"`
	Archived     bool                          `json:"archived,omitempty"`
	Associations map[string]AssociationPreview `json:"associations,omitempty"`
}

// AssociationPreview is the inline association block returned when objects
// are listed with the associations query parameter.
type AssociationPreview struct {
	Results []AssociationPreviewEntry `json:"results"`
}

// AssociationPreviewEntry is one associated object reference.
type AssociationPreviewEntry struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// CreateInput holds the data needed to create a new object.
type CreateInput struct {
	Properties map[string]string `json:"properties"`
}

// UpdateInput holds the data needed to update an existing object.
type UpdateInput struct {
	Properties map[string]string `json:"properties"`
}

// ListOpts holds the parameters for listing objects.
type ListOpts struct {
	Limit        int
	After        string
	Properties   []string
	Associations []ObjectType
	Sort         string
}

// ObjectPage is a paginated list of objects.
type ObjectPage struct {
	Results []*Object
	After   string
	HasMore bool
}

// AssociationIDs returns the ids of objects of the given type associated
// with o in its inline association preview, or nil if none were requested.
func (o *Object) AssociationIDs(t ObjectType) []string {
	if o.Associations == nil {
		return nil
	}
	preview, ok := o.Associations[string(t)]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(preview.Results))
	for _, entry := range preview.Results {
		ids = append(ids, entry.ID)
	}
	return ids
}

// Property returns a named property value, or "" when absent.
func (o *Object) Property(name string) string {
	if o.Properties == nil {
		return ""
	}
	return o.Properties[name]
}
