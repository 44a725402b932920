package document

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/edvalho/recipelint/pkg/models"
)

// envelopeSchema is the JSON Schema every recipe document must satisfy before
// the tree builder attempts to materialize it. It pins down the types of the
// structural fields; everything finer-grained (numbering, keyword roles,
// identifier uniqueness) is the builder's job. Block input is deliberately
// unconstrained: any JSON value is a legal input graph, a bare formula or
// reference leaf included.
const envelopeSchema = `{
	"$schema": "http://json-schema.org/draft-04/schema#",
	"type": "object",
	"required": ["name", "root"],
	"properties": {
		"name": {"type": "string"},
		"concurrency": {"type": "integer"},
		"root": {"$ref": "#/definitions/block"}
	},
	"definitions": {
		"block": {
			"type": "object",
			"required": ["number", "provider", "name", "as", "keyword"],
			"properties": {
				"number": {"type": "integer", "minimum": 0},
				"provider": {"type": "string"},
				"name": {"type": "string"},
				"as": {"type": "string"},
				"keyword": {"type": "string", "enum": ["trigger", "action"]},
				"input_schema": {"$ref": "#/definitions/schema"},
				"output_schema": {"$ref": "#/definitions/schema"},
				"block": {
					"type": "array",
					"items": {"$ref": "#/definitions/block"}
				}
			}
		},
		"schema": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string"},
					"type": {"type": "string", "enum": ["string", "integer", "number", "boolean", "object", "array", "null"]},
					"optional": {"type": "boolean"},
					"of": {"type": "string"},
					"properties": {"$ref": "#/definitions/schema"}
				}
			}
		}
	}
}`

// checkEnvelope validates the raw document bytes against the envelope schema.
// Violations come back as InvalidDocument issues; any of them means no
// meaningful tree can be built.
func checkEnvelope(raw []byte) []models.ValidationIssue {
	schemaLoader := gojsonschema.NewStringLoader(envelopeSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return []models.ValidationIssue{
			models.NewIssue(models.CodeInvalidDocument, models.Location{},
				"document is not valid JSON: %s", err),
		}
	}

	if result.Valid() {
		return nil
	}

	issues := make([]models.ValidationIssue, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, models.NewIssue(
			models.CodeInvalidDocument,
			models.Location{Pointer: fmt.Sprintf("/%s", desc.Field())},
			"%s", desc.Description(),
		))
	}

	return issues
}
