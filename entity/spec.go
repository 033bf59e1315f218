package entity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Default enrichment keys. These are part of the external contract of the
// transformer output and should only be changed in a spec with care, since
// downstream consumers query on them.
const (
	DefaultMarkerKey    = "transformed"
	DefaultTimestampKey = "_transformed_ts"
	DefaultTextWrapKey  = "message"
)

// Spec specifies how a single log stream should be processed, from the
// ingress write through the transform step. Specs are provided as JSON and
// validated against the embedded JSON schema.
// The Namespace + StreamIdSuffix combination must be unique (forming the
// stream ID). To upgrade an existing spec the version number needs to be
// incremented.
type Spec struct {
	// Main metadata (required)
	Namespace      string `json:"namespace"`
	StreamIdSuffix string `json:"streamIdSuffix"`
	Description    string `json:"description"`
	Version        int    `json:"version"`

	// Operational config (optional)
	Disabled bool `json:"disabled"`

	// Stream entity config
	Transform Transform `json:"transform"`
	Ingest    Ingest    `json:"ingest,omitempty"`
}

// Transform configures the record transformer.
type Transform struct {

	// MarkerKey is the boolean field set to true on each successfully
	// transformed event. Defaults to DefaultMarkerKey.
	MarkerKey string `json:"markerKey,omitempty"`

	// TimestampKey is the field receiving the processing wall-clock time
	// as unix seconds. Defaults to DefaultTimestampKey.
	TimestampKey string `json:"timestampKey,omitempty"`

	// TextWrapKey is the field under which a non-JSON payload is wrapped
	// into a JSON envelope. Defaults to DefaultTextWrapKey. The key is
	// stable per stream; downstream consumers rely on it.
	TextWrapKey string `json:"textWrapKey,omitempty"`

	// ExcludeEventsWith lists filter rules for events that should be
	// classified as Dropped, excluding them from all destinations.
	ExcludeEventsWith []ExcludeEventsWith `json:"excludeEventsWith,omitempty"`
}

// ExcludeEventsWith specifies a single exclude filter rule, matched against
// the decoded event. Rules are OR:ed — the first matching rule drops the
// event.
type ExcludeEventsWith struct {

	// Key is the JSON path of the field to check (required).
	Key string `json:"key"`

	// If the value of the field matches any of the ones in Values,
	// the event is excluded (blacklist).
	Values []string `json:"values,omitempty"`

	// If the value of the field does not match any of the ones in
	// ValuesNotIn, the event is excluded (whitelist).
	ValuesNotIn []string `json:"valuesNotIn,omitempty"`

	// If set to true, the event is excluded when the field is missing
	// or empty.
	ValueIsEmpty *bool `json:"valueIsEmpty,omitempty"`
}

// Ingest configures the ingress writer for the stream.
type Ingest struct {

	// DeliveryStreamName is the name of the delivery stream that ingress
	// writes go to. Required for the ingest entity, unused by the
	// transformer.
	DeliveryStreamName string `json:"deliveryStreamName,omitempty"`

	// Seal enables HMAC sealing of a payload field prior to the delivery
	// stream write.
	Seal *Seal `json:"seal,omitempty"`
}

// Seal specifies which ingress payload field to seal and which field
// switches sealing on per event.
type Seal struct {

	// PayloadKey is the JSON path of the field to seal (required).
	PayloadKey string `json:"payloadKey"`

	// FlagKey is the JSON path of a field that must hold the string
	// "true" for sealing to be applied. If omitted, sealing is applied
	// unconditionally.
	FlagKey string `json:"flagKey,omitempty"`
}

// NewSpec creates a new Spec from JSON and validates it both against the
// JSON schema and the rule logic on the created spec.
func NewSpec(specData []byte) (*Spec, error) {
	var spec Spec
	if len(specData) == 0 {
		return nil, errors.New("no spec data provided")
	}

	if err := validateRawJson(specData); err != nil {
		return nil, err
	}

	err := json.Unmarshal(specData, &spec)
	if err == nil {
		spec.EnsureValidDefaults()
		err = spec.Validate()
	}
	return &spec, err
}

func (s *Spec) Id() string {
	return s.Namespace + "-" + s.StreamIdSuffix
}

func (s *Spec) IsDisabled() bool {
	return s.Disabled
}

func (s *Spec) EnsureValidDefaults() {
	if s.Transform.MarkerKey == "" {
		s.Transform.MarkerKey = DefaultMarkerKey
	}
	if s.Transform.TimestampKey == "" {
		s.Transform.TimestampKey = DefaultTimestampKey
	}
	if s.Transform.TextWrapKey == "" {
		s.Transform.TextWrapKey = DefaultTextWrapKey
	}
}

// Spec JSON schema validation is handled by NewSpec() using
// validateRawJson() against the embedded schema. This method covers the
// checks a schema cannot express.
func (s *Spec) Validate() error {
	for _, filter := range s.Transform.ExcludeEventsWith {
		if len(filter.Values) > 0 && len(filter.ValuesNotIn) > 0 {
			return fmt.Errorf("exclude filter for key %q cannot have both values and valuesNotIn", filter.Key)
		}
	}
	return nil
}

func (s *Spec) JSON() []byte {
	specData, _ := json.Marshal(s)
	return specData
}

func validateRawJson(specData []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(specSchema)
	documentLoader := gojsonschema.NewBytesLoader(specData)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		specErrors := ""
		for _, desc := range result.Errors() {
			specErrors += " - " + desc.String()
		}
		err = errors.New(specErrors)
	}
	return err
}

var specSchema = []byte(`
{
  "$schema": "http://json-schema.org/draft-07/schema",
  "type": "object",
  "required": [
    "namespace",
    "streamIdSuffix",
    "version",
    "description"
  ],
  "properties": {
    "namespace": {
      "type": "string",
      "minLength": 1
    },
    "streamIdSuffix": {
      "type": "string",
      "minLength": 1
    },
    "version": {
      "type": "integer"
    },
    "description": {
      "type": "string",
      "minLength": 1
    },
    "disabled": {
      "type": "boolean"
    },
    "transform": {
      "type": "object",
      "properties": {
        "markerKey": {
          "type": "string",
          "minLength": 1
        },
        "timestampKey": {
          "type": "string",
          "minLength": 1
        },
        "textWrapKey": {
          "type": "string",
          "minLength": 1
        },
        "excludeEventsWith": {
          "type": "array",
          "items": {
            "type": "object",
            "required": [
              "key"
            ],
            "properties": {
              "key": {
                "type": "string",
                "minLength": 1
              },
              "values": {
                "type": "array",
                "items": {
                  "type": "string"
                }
              },
              "valuesNotIn": {
                "type": "array",
                "items": {
                  "type": "string"
                }
              },
              "valueIsEmpty": {
                "type": "boolean"
              }
            },
            "additionalProperties": false
          }
        }
      },
      "additionalProperties": false
    },
    "ingest": {
      "type": "object",
      "properties": {
        "deliveryStreamName": {
          "type": "string",
          "minLength": 1
        },
        "seal": {
          "type": "object",
          "required": [
            "payloadKey"
          ],
          "properties": {
            "payloadKey": {
              "type": "string",
              "minLength": 1
            },
            "flagKey": {
              "type": "string"
            }
          },
          "additionalProperties": false
        }
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}
`)
