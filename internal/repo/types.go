package repo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// stringList persists a []string as a JSON array. Values are encoded as
// text so the same literal works for JSONB and SQLite TEXT columns.
type stringList []string

func (l stringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *stringList) Scan(src any) error {
	raw, err := rawJSON(src)
	if err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	if len(raw) == 0 {
		*l = stringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// jsonDocument persists an arbitrary JSON object.
type jsonDocument map[string]any

func (d jsonDocument) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(d))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *jsonDocument) Scan(src any) error {
	raw, err := rawJSON(src)
	if err != nil {
		return fmt.Errorf("scan json document: %w", err)
	}
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("decode json document: %w", err)
		}
	}
	*d = out
	return nil
}

func rawJSON(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported source type %T", src)
	}
}

func newID() string {
	return uuid.NewString()
}

// now is truncated to microseconds so round trips through either backend
// compare equal.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
