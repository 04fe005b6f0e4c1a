package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const generateSchema = `{
  "type": "object",
  "required": ["base_content", "platforms", "tone"],
  "properties": {
    "base_content": {"type": "string", "minLength": 1},
    "platforms": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
    "tone": {"type": "string"}
  }
}`

const visualsSchema = `{
  "type": "object",
  "required": ["topic", "keywords"],
  "properties": {
    "topic": {"type": "string"},
    "keywords": {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	generateRequestSchema = mustSchema(generateSchema)
	visualsRequestSchema  = mustSchema(visualsSchema)
)

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("server: invalid request schema: %v", err))
	}
	return schema
}

// validateBody checks body against schema and joins every violation into
// one message.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		violations = append(violations, violation.String())
	}
	return fmt.Errorf("%w: %s", errInvalidBody, strings.Join(violations, "; "))
}
