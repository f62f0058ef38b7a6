package domain

// Property represents a HubSpot CRM property definition.
type Property struct {
	Name                 string                `json:"name"`
	Label                string                `json:"label"`
	Type                 string                `json:"type"`
	FieldType            string                `json:"fieldType"`
	GroupName            string                `json:"groupName,omitempty"`
	Description          string                `json:"description,omitempty"`
	Options              []Option              `json:"options,omitempty"`
	DisplayOrder         int                   `json:"displayOrder,omitempty"`
	HasUniqueValue       bool                  `json:"hasUniqueValue,omitempty"`
	Hidden               bool                  `json:"hidden,omitempty"`
	Calculated           bool                  `json:"calculated,omitempty"`
	ExternalOptions      bool                  `json:"externalOptions,omitempty"`
	ReadOnlyValue        bool                  `json:"readOnlyValue,omitempty"`
	HubspotDefined       bool                  `json:"hubspotDefined,omitempty"`
	ReferencedObjectType string                `json:"referencedObjectType,omitempty"`
	ModificationMetadata *ModificationMetadata `json:"modificationMetadata,omitempty"`
}

// Option represents a selectable option for enumeration properties.
type Option struct {
	Label        string `json:"label"`
	Value        string `json:"value"`
	DisplayOrder int    `json:"displayOrder"`
	Hidden       bool   `json:"hidden"`
}

// ModificationMetadata describes the modification constraints of a property.
type ModificationMetadata struct {
	Archivable         bool `json:"archivable"`
	ReadOnlyDefinition bool `json:"readOnlyDefinition"`
	ReadOnlyOptions    bool `json:"readOnlyOptions"`
	ReadOnlyValue      bool `json:"readOnlyValue"`
}

// IsReadOnly reports whether the property value cannot be written, looking
// at both the top-level flag and the modification metadata.
func (p *Property) IsReadOnly() bool {
	if p.ReadOnlyValue || p.Calculated {
		return true
	}
	return p.ModificationMetadata != nil && p.ModificationMetadata.ReadOnlyValue
}

// PropertyGroup represents a grouping of related properties.
type PropertyGroup struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	DisplayOrder int    `json:"displayOrder"`
	Archived     bool   `json:"archived,omitempty"`
}
