package domain

// AssociationType describes the type of an existing association as returned
// by the associations read endpoints.
type AssociationType struct {
	TypeID   int    `json:"typeId"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// AssociationResult represents a single association from a source object to
// a target object.
type AssociationResult struct {
	ToObjectID string            `json:"toObjectId"`
	Types      []AssociationType `json:"associationTypes"`
}

// AssociationEndpoint references one side of an association in a batch
// create request.
type AssociationEndpoint struct {
	ID string `json:"id"`
}

// AssociationInput is one entry of a batch association create request.
type AssociationInput struct {
	From AssociationEndpoint `json:"from"`
	To   AssociationEndpoint `json:"to"`
	Type string              `json:"type,omitempty"`
}

// AssociationBatchResult wraps the response of a batch association create.
type AssociationBatchResult struct {
	Status      string              `json:"status"`
	Results     []AssociationResult `json:"results"`
	NumErrors   int                 `json:"numErrors,omitempty"`
	CompletedAt string              `json:"completedAt,omitempty"`
}
