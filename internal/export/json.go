package export

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed record.schema.json
var recordSchema string

// Record is the JSON export of a session.
type Record struct {
	Resume    string    `json:"resume"`
	Goal      string    `json:"goal"`
	Role      string    `json:"role"`
	Roadmap   string    `json:"roadmap"`
	Timestamp time.Time `json:"timestamp"`
}

// SchemaError lists the schema violations of an export.
type SchemaError struct {
	Errors []string
}

func (e *SchemaError) Error() string {
	return "roadmap record does not match schema: " + strings.Join(e.Errors, "; ")
}

// JSON renders r indented and checks it against the record schema.
func JSON(r Record) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	if err := validateRecord(data); err != nil {
		return nil, err
	}
	return data, nil
}

func validateRecord(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(recordSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("load record schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Errors = append(schemaErr.Errors, field+": "+desc.Description())
	}
	return schemaErr
}
