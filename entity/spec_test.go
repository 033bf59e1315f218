package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests of transformations using the spec constructs are found in the
// transform package.

func TestSpecModel(t *testing.T) {

	spec, err := NewSpec(specOk)
	assert.NoError(t, err)
	require.NotNil(t, spec)
	assert.Equal(t, "loghosetest-applog", spec.Id())
	assert.False(t, spec.IsDisabled())

	// Defaults applied for all enrichment keys
	assert.Equal(t, DefaultMarkerKey, spec.Transform.MarkerKey)
	assert.Equal(t, DefaultTimestampKey, spec.Transform.TimestampKey)
	assert.Equal(t, DefaultTextWrapKey, spec.Transform.TextWrapKey)

	spec, err = NewSpec(specFull)
	assert.NoError(t, err)
	require.NotNil(t, spec)
	assert.Equal(t, "processed", spec.Transform.MarkerKey)
	assert.Equal(t, "processedAt", spec.Transform.TimestampKey)
	assert.Equal(t, "text", spec.Transform.TextWrapKey)
	require.Len(t, spec.Transform.ExcludeEventsWith, 1)
	assert.Equal(t, "name", spec.Transform.ExcludeEventsWith[0].Key)
	assert.Equal(t, "central-log-stream", spec.Ingest.DeliveryStreamName)
	require.NotNil(t, spec.Ingest.Seal)
	assert.Equal(t, `ApplicationData\.Payload`, spec.Ingest.Seal.PayloadKey)

	// Spec JSON round-trip keeps the ID
	spec2, err := NewSpec(spec.JSON())
	assert.NoError(t, err)
	assert.Equal(t, spec.Id(), spec2.Id())
}

func TestSpecValidation(t *testing.T) {

	// No spec data
	spec, err := NewSpec(nil)
	assert.Error(t, err)
	assert.Nil(t, spec)

	// Not JSON at all
	spec, err = NewSpec([]byte("not a spec"))
	assert.Error(t, err)
	assert.Nil(t, spec)

	// Missing required fields
	spec, err = NewSpec([]byte(`{"namespace": "loghosetest"}`))
	assert.Error(t, err)

	// Unknown fields rejected
	spec, err = NewSpec([]byte(`
	{
	   "namespace": "loghosetest",
	   "streamIdSuffix": "applog",
	   "version": 1,
	   "description": "...",
	   "somethingElse": true
	}`))
	assert.Error(t, err)

	// Seal block without payloadKey rejected
	spec, err = NewSpec([]byte(`
	{
	   "namespace": "loghosetest",
	   "streamIdSuffix": "applog",
	   "version": 1,
	   "description": "...",
	   "ingest": {
	      "deliveryStreamName": "central-log-stream",
	      "seal": {}
	   }
	}`))
	assert.Error(t, err)

	// Exclude filter with both values and valuesNotIn rejected
	spec, err = NewSpec([]byte(`
	{
	   "namespace": "loghosetest",
	   "streamIdSuffix": "applog",
	   "version": 1,
	   "description": "...",
	   "transform": {
	      "excludeEventsWith": [
	         {
	            "key": "name",
	            "values": ["A"],
	            "valuesNotIn": ["B"]
	         }
	      ]
	   }
	}`))
	assert.Error(t, err)
	assert.Nil(t, nilIfInvalid(spec, err))
}

// Validate() errors are returned together with the unmarshalled spec;
// callers must regard the spec as unusable in that case.
func nilIfInvalid(spec *Spec, err error) *Spec {
	if err != nil {
		return nil
	}
	return spec
}

var specOk = []byte(`
{
   "namespace": "loghosetest",
   "streamIdSuffix": "applog",
   "version": 1,
   "description": "Minimal valid spec"
}`)

var specFull = []byte(`
{
   "namespace": "loghosetest",
   "streamIdSuffix": "fulllog",
   "version": 2,
   "description": "All options in use",
   "transform": {
      "markerKey": "processed",
      "timestampKey": "processedAt",
      "textWrapKey": "text",
      "excludeEventsWith": [
         {
            "key": "name",
            "values": ["HEARTBEAT"]
         }
      ]
   },
   "ingest": {
      "deliveryStreamName": "central-log-stream",
      "seal": {
         "payloadKey": "ApplicationData\\.Payload",
         "flagKey": "ApplicationData\\.Encrypt"
      }
   }
}`)
