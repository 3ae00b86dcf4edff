package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONText is a raw JSON document. Postgres and MySQL keep it in their JSON
// column types, every other engine in a TEXT column so scalars such as 3 are
// not turned into numbers.
type JSONText json.RawMessage

// GormDBDataType implements gorm's per dialect column type.
func (JSONText) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	case "mysql":
		return "JSON"
	default:
		return "TEXT"
	}
}

// Value implements driver.Valuer.
func (j JSONText) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}

	return string(j), nil
}

// Scan implements sql.Scanner. Numbers are accepted for rows written while
// the column still had numeric affinity.
func (j *JSONText) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONText(v)
	case int64:
		*j = JSONText(strconv.FormatInt(v, 10))
	case float64:
		*j = JSONText(strconv.FormatFloat(v, 'g', -1, 64))
	case bool:
		*j = JSONText(strconv.FormatBool(v))
	default:
		return fmt.Errorf("unsupported json column value %T", value)
	}

	return nil
}

// MarshalJSON writes the document as is.
func (j JSONText) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}

	return j, nil
}

// UnmarshalJSON keeps a copy of the raw document.
func (j *JSONText) UnmarshalJSON(b []byte) error {
	*j = append((*j)[:0], b...)

	return nil
}
