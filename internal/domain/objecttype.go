package domain

import "fmt"

// ObjectType identifies a CRM object type. Custom object types carry their
// fully qualified schema name (e.g. "p12345_machines") via Custom.
type ObjectType string

const (
	TypeContact ObjectType = "contacts"
	TypeCompany ObjectType = "companies"
	TypeDeal    ObjectType = "deals"
	TypeTicket  ObjectType = "tickets"
)

// Custom builds an ObjectType for a custom object schema.
func Custom(fullyQualifiedName string) ObjectType {
	return ObjectType(fullyQualifiedName)
}

// String returns the API path segment for the type.
func (t ObjectType) String() string { return string(t) }

// DefaultPipelineID returns the portal-provided pipeline id that cannot be
// deleted or recreated for this object type, or "" if the type has no
// pipelines. Deals use "default", tickets use "0".
func (t ObjectType) DefaultPipelineID() string {
	switch t {
	case TypeDeal:
		return "default"
	case TypeTicket:
		return "0"
	default:
		return ""
	}
}

// AssociationSpec names a directed association between two object types the
// way the batch associations API addresses it.
type AssociationSpec struct {
	From ObjectType
	To   ObjectType
}

// TypeName returns the HubSpot association type string for the pair, e.g.
// "deal_to_contact". Unknown pairs fall back to singular_to_singular form.
func (s AssociationSpec) TypeName() string {
	return fmt.Sprintf("%s_to_%s", singular(s.From), singular(s.To))
}

func singular(t ObjectType) string {
	switch t {
	case TypeContact:
		return "contact"
	case TypeCompany:
		return "company"
	case TypeDeal:
		return "deal"
	case TypeTicket:
		return "ticket"
	default:
		return string(t)
	}
}
