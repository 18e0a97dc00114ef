package common

import (
	"encoding/json"
	"fmt"
)

type entityAlias Entity

type entityJSON struct {
	Kind Kind `json:"kind"`
	entityAlias
	Details json.RawMessage `json:"details,omitempty"`
}

// MarshalJSON writes the entity with an explicit kind tag next to its details.
func (e Entity) MarshalJSON() ([]byte, error) {
	out := entityJSON{Kind: e.Kind(), entityAlias: entityAlias(e)}
	out.entityAlias.Details = nil
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, err
		}
		out.Details = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the concrete details type from the kind tag.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var in entityJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	details, ok := EmptyDetails(in.Kind)
	if !ok {
		return fmt.Errorf("unknown entity kind %q", in.Kind)
	}
	if len(in.Details) > 0 && string(in.Details) != "null" {
		var err error
		switch d := details.(type) {
		case PersonDetails:
			err = json.Unmarshal(in.Details, &d)
			details = d
		case OrganizationDetails:
			err = json.Unmarshal(in.Details, &d)
			details = d
		case EventDetails:
			err = json.Unmarshal(in.Details, &d)
			details = d
		case PolicyDetails:
			err = json.Unmarshal(in.Details, &d)
			details = d
		}
		if err != nil {
			return fmt.Errorf("failed to decode %s details: %w", in.Kind, err)
		}
	}

	*e = Entity(in.entityAlias)
	e.Details = details
	return nil
}
