// Package contact defines the Contact entity shared by the client, the CLI
// and the development backend.
package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Field identifies one of the editable contact fields.
type Field int

const (
	FieldName  Field = iota // Required.
	FieldEmail              // Optional.
	FieldPhone              // Required.
)

// Fields lists the editable fields in form order.
var Fields = [...]Field{FieldName, FieldEmail, FieldPhone}

// String returns the lower-case wire name of the field.
func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "phone"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Required reports whether the field must be non-blank on submit.
func (f Field) Required() bool {
	return f == FieldName || f == FieldPhone
}

// Contact is a contact as last reported by the server. ID is assigned by the
// server and never changes.
type Contact struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Draft is a Contact minus its ID: the body of create and update requests
// and the local, uncommitted state of a form.
type Draft struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Draft returns the editable fields of c.
func (c Contact) Draft() Draft {
	return Draft{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// WithID returns a Contact carrying d's fields under id.
func (d Draft) WithID(id string) Contact {
	return Contact{ID: id, Name: d.Name, Email: d.Email, Phone: d.Phone}
}

// Value returns the draft's value for f.
func (d Draft) Value(f Field) string {
	switch f {
	case FieldName:
		return d.Name
	case FieldEmail:
		return d.Email
	case FieldPhone:
		return d.Phone
	default:
		return ""
	}
}

// Missing returns the required fields that are empty, in form order. Any
// non-empty value counts as present, whitespace included.
func (d Draft) Missing() []Field {
	var missing []Field
	for _, f := range Fields {
		if f.Required() && d.Value(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// ErrMissingField is wrapped by Validate when a required field is blank.
var ErrMissingField = errors.New("contact: required field missing")

// Validate returns an error naming every empty required field, or nil.
func (d Draft) Validate() error {
	missing := d.Missing()
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = f.String()
	}
	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(names, ", "))
}

// UnmarshalJSON accepts the id as either a JSON string or a JSON number.
// Numeric ids keep their literal text so they can be forwarded verbatim.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Name  string          `json:"name"`
		Email string          `json:"email"`
		Phone string          `json:"phone"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	*c = Contact{ID: id, Name: raw.Name, Email: raw.Email, Phone: raw.Phone}
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("contact: id must be a string or a number, got %s", raw)
}

// Remove returns contacts without the entry whose ID is id. The remaining
// entries keep their order. The input slice is not modified.
func Remove(contacts []Contact, id string) []Contact {
	out := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
