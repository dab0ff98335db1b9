package config

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// configSchema constrains the shape of the configuration document before it
// is decoded. Value-level invariants live in Config.Validate.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["project", "paths"],
  "properties": {
    "project": {"type": "string", "minLength": 1},
    "paths": {
      "type": "object",
      "required": ["scene_octree", "overcast_sky", "sky_dir", "view_dir", "octree_dir", "image_dir"],
      "properties": {
        "scene_octree": {"type": "string"},
        "overcast_sky": {"type": "string"},
        "sky_dir": {"type": "string"},
        "view_dir": {"type": "string"},
        "octree_dir": {"type": "string"},
        "image_dir": {"type": "string"},
        "region_dir": {"type": "string"},
        "result_dir": {"type": "string"},
        "scale_map": {"type": "string"}
      },
      "additionalProperties": false
    },
    "render": {
      "type": "object",
      "properties": {
        "x_res": {"type": "integer", "minimum": 1},
        "y_res": {"type": "integer", "minimum": 1},
        "exposure": {"type": "number", "exclusiveMinimum": 0},
        "threshold": {"type": "number", "minimum": 0}
      },
      "additionalProperties": false
    },
    "workers": {
      "type": "object",
      "properties": {
        "scene_compile": {"type": "integer", "minimum": 1},
        "ambient_warm": {"type": "integer", "minimum": 1},
        "condition_compile": {"type": "integer", "minimum": 1},
        "render": {"type": "integer", "minimum": 1},
        "composite": {"type": "integer", "minimum": 1},
        "convert": {"type": "integer", "minimum": 1},
        "aggregate": {"type": "integer", "minimum": 1}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

var compiledSchema = jsonschema.MustCompileString("config.schema.json", configSchema)

// validate checks a raw YAML document against the configuration schema.
func validate(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// Round-trip through JSON so the validator sees JSON-typed values.
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert config document: %w", err)
	}
	var jsonDoc interface{}
	if err := json.Unmarshal(jsonData, &jsonDoc); err != nil {
		return fmt.Errorf("failed to convert config document: %w", err)
	}

	if err := compiledSchema.Validate(jsonDoc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
