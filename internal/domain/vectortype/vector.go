// Package vectortype implements a minimal GORM column type for a
// pgvector-compatible fixed-width float64 vector. No third-party pgvector
// driver is available in this module's dependency set (see DESIGN.md); the
// Scan/Value shape mirrors gorm.io/datatypes.JSON's custom-type idiom.
package vectortype

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const Dimensions = 1536

// Vector is a fixed-length embedding stored in Postgres as a pgvector
// column ("vector(1536)"). It marshals to/from pgvector's text wire format
// "[v1,v2,...]" so it round-trips through the pgvector extension without a
// dedicated driver.
type Vector []float64

func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	if len(v) != Dimensions {
		return nil, fmt.Errorf("vectortype: expected %d dimensions, got %d", Dimensions, len(v))
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String(), nil
}

func (v *Vector) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	var raw string
	switch t := value.(type) {
	case string:
		raw = t
	case []byte:
		raw = string(t)
	default:
		return fmt.Errorf("vectortype: unsupported scan type %T", value)
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if raw == "" {
		*v = Vector{}
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make(Vector, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("vectortype: parse component %q: %w", p, err)
		}
		out = append(out, f)
	}
	*v = out
	return nil
}

// GormDataType tells GORM's migrator which SQL column type to create.
func (Vector) GormDataType() string {
	return "vector"
}

func (Vector) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return fmt.Sprintf("vector(%d)", Dimensions)
}

// MarshalJSON/UnmarshalJSON let a Vector participate in API responses
// (generally omitted from wire payloads, but required for test fixtures).
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64(v))
}

func (v *Vector) UnmarshalJSON(data []byte) error {
	var f []float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Vector(f)
	return nil
}
