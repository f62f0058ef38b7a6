package domain

// ObjectSchema represents a custom object schema definition.
type ObjectSchema struct {
	ID                     string              `json:"id,omitempty"`
	Name                   string              `json:"name"`
	Labels                 SchemaLabels        `json:"labels"`
	PrimaryDisplayProperty string              `json:"primaryDisplayProperty,omitempty"`
	RequiredProperties     []string            `json:"requiredProperties,omitempty"`
	Properties             []Property          `json:"properties,omitempty"`
	AssociatedObjects      []string            `json:"associatedObjects,omitempty"`
	Associations           []SchemaAssociation `json:"associations,omitempty"`
	FullyQualifiedName     string              `json:"fullyQualifiedName,omitempty"`
	ObjectTypeID           string              `json:"objectTypeId,omitempty"`
	Archived               bool                `json:"archived,omitempty"`
}

// SchemaLabels holds the singular and plural display labels for a schema.
type SchemaLabels struct {
	Singular string `json:"singular"`
	Plural   string `json:"plural"`
}

// SchemaAssociation defines an association type between schemas.
type SchemaAssociation struct {
	ID               string `json:"id,omitempty"`
	FromObjectTypeID string `json:"fromObjectTypeId"`
	ToObjectTypeID   string `json:"toObjectTypeId"`
	Name             string `json:"name,omitempty"`
}

// ObjectType returns the ObjectType used to address records of this schema.
func (s *ObjectSchema) ObjectType() ObjectType {
	if s.FullyQualifiedName != "" {
		return Custom(s.FullyQualifiedName)
	}
	return Custom(s.Name)
}

// CreationInput strips portal-specific fields so the schema can be recreated
// in another portal. hubspotDefined properties cannot be created and are
// dropped.
func (s *ObjectSchema) CreationInput() ObjectSchema {
	out := ObjectSchema{
		Name:                   s.Name,
		Labels:                 s.Labels,
		PrimaryDisplayProperty: s.PrimaryDisplayProperty,
		RequiredProperties:     s.RequiredProperties,
		AssociatedObjects:      s.AssociatedObjects,
	}
	for _, p := range s.Properties {
		if p.HubspotDefined || p.Calculated {
			continue
		}
		out.Properties = append(out.Properties, Property{
			Name:        p.Name,
			Label:       p.Label,
			Type:        p.Type,
			FieldType:   p.FieldType,
			Description: p.Description,
			Options:     p.Options,
		})
	}
	return out
}
