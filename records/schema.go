package records

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aagaur/studiocms/utils"
)

// Kind says how a raw field value is converted.
type Kind int

const (
	Text Kind = iota
	Number
	Date
	JSON
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Date:
		return "date"
	case JSON:
		return "json"
	}
	return "text"
}

// Field describes one writable attribute. Name is the JSON / form name.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	// Sanitize strips unsafe markup from Text values.
	Sanitize bool
}

// Images names the file fields a record accepts. An empty name disables that slot.
type Images struct {
	Main         string
	MainRequired bool
	Gallery      string
}

// FileFields lists the multipart field names to read files from.
func (im Images) FileFields() []string {
	var out []string
	if im.Main != "" {
		out = append(out, im.Main)
	}
	if im.Gallery != "" {
		out = append(out, im.Gallery)
	}
	return out
}

type Schema struct {
	Fields []Field
	Images Images
}

// Normalize converts the declared fields present in input. Keys not declared
// are ignored. With partial set, missing required fields are allowed but a
// present required field may still not be blank.
func (s Schema) Normalize(input map[string]interface{}, partial bool) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(s.Fields))
	for _, f := range s.Fields {
		raw, ok := input[f.Name]
		if ok && raw == nil {
			ok = false
		}
		if !ok {
			if f.Required && !partial {
				return nil, invalid(f.Name, "is required")
			}
			continue
		}
		v, present, err := convert(f, raw)
		if err != nil {
			return nil, err
		}
		if !present {
			if f.Required {
				return nil, invalid(f.Name, "is required")
			}
			if f.Kind == Text || f.Kind == Date {
				// explicit blank clears the value
				out[f.Name] = v
			}
			continue
		}
		out[f.Name] = v
	}
	return out, nil
}

// convert returns present=false for blank input.
func convert(f Field, raw interface{}) (interface{}, bool, error) {
	switch f.Kind {
	case Text:
		s, err := textValue(f.Name, raw)
		if err != nil {
			return nil, false, err
		}
		if f.Sanitize {
			s = utils.SanitizeHTML(s)
		}
		return s, s != "", nil
	case Number:
		return numberValue(f.Name, raw)
	case Date:
		return dateValue(f.Name, raw)
	case JSON:
		return jsonValue(f.Name, raw)
	}
	return nil, false, invalid(f.Name, "unsupported field kind %s", f.Kind)
}

func textValue(name string, raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	}
	return "", invalid(name, "must be a string")
}

func numberValue(name string, raw interface{}) (interface{}, bool, error) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, false, invalid(name, "must be an integer")
		}
		return n, true, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, false, invalid(name, "must be an integer")
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	}
	return nil, false, invalid(name, "must be an integer")
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func dateValue(name string, raw interface{}) (interface{}, bool, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, false, invalid(name, "must be a date string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true, nil
		}
	}
	return nil, false, invalid(name, "must be a date (YYYY-MM-DD or RFC3339)")
}

// jsonValue accepts a JSON-encoded string, as sent inside multipart bodies,
// or an already decoded value from a JSON request body.
func jsonValue(name string, raw interface{}) (interface{}, bool, error) {
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, false, nil
		}
		if !json.Valid([]byte(s)) {
			return nil, false, invalid(name, "invalid JSON")
		}
		return json.RawMessage(s), true, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, false, invalid(name, "invalid JSON: %v", err)
	}
	return json.RawMessage(b), true, nil
}

// apply copies normalized values onto rec. Only keys present in values change.
func apply(values map[string]interface{}, rec interface{}) error {
	if len(values) == 0 {
		return nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	if err := json.Unmarshal(b, rec); err != nil {
		if te, ok := err.(*json.UnmarshalTypeError); ok {
			return invalid(te.Field, "has the wrong type")
		}
		return fmt.Errorf("decode fields: %w", err)
	}
	return nil
}
