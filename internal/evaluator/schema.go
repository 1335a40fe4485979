package evaluator

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	schemaEvaluate  = "evaluate-response"
	schemaSummarize = "summarize-response"
	schemaHistory   = "chat-history"
)

var schemaDefinitions = map[string]string{
	schemaEvaluate: `{
		"type": "object",
		"properties": {
			"response": {"type": "string"},
			"message": {"type": "string"},
			"webscraping": {"type": "boolean"},
			"ragRetrieval": {"type": "boolean"}
		},
		"anyOf": [
			{"required": ["response"]},
			{"required": ["message"]}
		]
	}`,
	schemaSummarize: `{
		"type": "object",
		"properties": {
			"pdf_filename": {"type": "string", "minLength": 1}
		},
		"required": ["pdf_filename"]
	}`,
	schemaHistory: `{
		"type": "object",
		"properties": {
			"history": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"role": {"enum": ["user", "assistant"]},
						"content": {"type": "string"}
					},
					"required": ["role", "content"]
				}
			}
		},
		"required": ["history"]
	}`,
}

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw against the named schema. Returns
// *InvalidResponseError on failure.
func validateBody(op, name string, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &InvalidResponseError{Op: op, Body: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledSchema(name)
	if err != nil {
		return &InvalidResponseError{Op: op, Body: raw, Err: fmt.Errorf("compile schema %q: %w", name, err)}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &InvalidResponseError{Op: op, Body: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := schemaDefinitions[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	var doc any
	if err := json.Unmarshal([]byte(def), &doc); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
