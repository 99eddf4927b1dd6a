package billing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ActeRefKind discriminates how an incoming item referenced an acte.
type ActeRefKind int

const (
	ActeRefNone ActeRefKind = iota
	ActeRefByID
	ActeRefByCode
	ActeRefByName
)

// ActeRef is a typed acte reference. JSON payloads may carry it as a uuid
// string, a free-text code or name, or an object with an id/code/name field;
// all forms decode into one of the explicit variants above.
type ActeRef struct {
	Kind ActeRefKind
	ID   uuid.UUID
	Text string
}

// IsZero reports whether no reference was supplied.
func (r ActeRef) IsZero() bool { return r.Kind == ActeRefNone }

func (r *ActeRef) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*r = ActeRef{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = refFromString(s)
		return nil
	}

	var obj struct {
		ID   *string `json:"id"`
		Code *string `json:"code"`
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("acte reference must be a string or object: %w", err)
	}
	switch {
	case obj.ID != nil:
		id, err := uuid.Parse(*obj.ID)
		if err != nil {
			return fmt.Errorf("invalid acte id: %w", err)
		}
		*r = ActeRef{Kind: ActeRefByID, ID: id}
	case obj.Code != nil && *obj.Code != "":
		*r = ActeRef{Kind: ActeRefByCode, Text: *obj.Code}
	case obj.Name != nil && *obj.Name != "":
		*r = ActeRef{Kind: ActeRefByName, Text: *obj.Name}
	default:
		*r = ActeRef{}
	}
	return nil
}

func (r ActeRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ActeRefByID:
		return json.Marshal(r.ID.String())
	case ActeRefByCode, ActeRefByName:
		return json.Marshal(r.Text)
	default:
		return []byte("null"), nil
	}
}

func refFromString(s string) ActeRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return ActeRef{}
	}
	if id, err := uuid.Parse(s); err == nil {
		return ActeRef{Kind: ActeRefByID, ID: id}
	}
	// A bare string may be a code or a name; resolution tries both.
	return ActeRef{Kind: ActeRefByCode, Text: s}
}
