package common

import "strings"

// SchemaContext is the linked-data vocabulary every report is expressed in.
const SchemaContext = "https://schema.org"

// Vocabulary types used for each kind when no subtype applies.
const (
	SchemaPerson                 = "Person"
	SchemaOrganization           = "Organization"
	SchemaGovernmentOrganization = "GovernmentOrganization"
	SchemaThing                  = "Thing"
	SchemaEvent                  = "Event"
	SchemaLegislation            = "Legislation"
	SchemaGovernmentService      = "GovernmentService"
)

// schemaSubtypes maps vocabulary subtypes to the kind they specialise.
var schemaSubtypes = map[string]Kind{
	"person": KindPerson,

	"organization":            KindOrganization,
	"governmentorganization":  KindOrganization,
	"ngo":                     KindOrganization,
	"corporation":             KindOrganization,
	"educationalorganization": KindOrganization,
	"newsmediaorganization":   KindOrganization,
	"politicalparty":          KindOrganization,
	"researchorganization":    KindOrganization,

	"thing":        KindTopic,
	"definedterm":  KindTopic,
	"creativework": KindTopic,

	"event":            KindEvent,
	"businessevent":    KindEvent,
	"educationevent":   KindEvent,
	"socialevent":      KindEvent,
	"publicationevent": KindEvent,
	"exhibitionevent":  KindEvent,
	"deliveryevent":    KindEvent,

	"legislation":       KindPolicy,
	"legislationobject": KindPolicy,
	"governmentservice": KindPolicy,
}

// schemaNames keeps the canonical spelling of each subtype.
var schemaNames = map[string]string{
	"governmentorganization":  SchemaGovernmentOrganization,
	"ngo":                     "NGO",
	"corporation":             "Corporation",
	"educationalorganization": "EducationalOrganization",
	"newsmediaorganization":   "NewsMediaOrganization",
	"politicalparty":          "PoliticalParty",
	"researchorganization":    "ResearchOrganization",
	"definedterm":             "DefinedTerm",
	"creativework":            "CreativeWork",
	"businessevent":           "BusinessEvent",
	"educationevent":          "EducationEvent",
	"socialevent":             "SocialEvent",
	"publicationevent":        "PublicationEvent",
	"exhibitionevent":         "ExhibitionEvent",
	"deliveryevent":           "DeliveryEvent",
	"legislationobject":       "LegislationObject",
	"governmentservice":       SchemaGovernmentService,
}

func schemaKey(t string) string {
	t = strings.TrimSpace(t)
	t = strings.TrimPrefix(t, "schema:")
	t = strings.TrimPrefix(t, "https://schema.org/")
	t = strings.TrimPrefix(t, "http://schema.org/")
	return strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(t))
}

// KindForSchemaType returns the kind a vocabulary type name belongs to.
func KindForSchemaType(t string) (Kind, bool) {
	k, ok := schemaSubtypes[schemaKey(t)]
	return k, ok
}

// SchemaSubtype returns the canonical subtype name for hint when the hint is a
// known subtype of kind k.
func SchemaSubtype(k Kind, hint string) (string, bool) {
	key := schemaKey(hint)
	if key == "" || schemaSubtypes[key] != k {
		return "", false
	}
	name, ok := schemaNames[key]
	return name, ok
}

// SchemaType returns the base vocabulary type for kind k.
func SchemaType(k Kind) string {
	switch k {
	case KindPerson:
		return SchemaPerson
	case KindOrganization:
		return SchemaOrganization
	case KindEvent:
		return SchemaEvent
	case KindPolicy:
		return SchemaLegislation
	}
	return SchemaThing
}
