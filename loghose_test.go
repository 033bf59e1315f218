package loghose

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/loghose/loghose/entity"
)

var specApplog = []byte(`
{
   "namespace": "loghosetest",
   "streamIdSuffix": "applog",
   "version": 1,
   "description": "Stream used in API tests"
}`)

func TestNew(t *testing.T) {

	// Config must be created with NewConfig()
	l, err := New(nil)
	assert.ErrorIs(t, err, ErrConfigNotInitialized)
	assert.Nil(t, l)

	// Invalid spec
	config := NewConfig()
	config.Spec = []byte("not a spec")
	l, err = New(config)
	assert.ErrorIs(t, err, ErrInvalidStreamSpec)
	assert.Nil(t, l)

	// Disabled spec
	config = NewConfig()
	config.Spec = []byte(`
	{
	   "namespace": "loghosetest",
	   "streamIdSuffix": "applog",
	   "version": 1,
	   "description": "...",
	   "disabled": true
	}`)
	l, err = New(config)
	assert.ErrorIs(t, err, ErrStreamDisabled)
	assert.Nil(t, l)

	// Valid spec
	config = NewConfig()
	config.Spec = specApplog
	l, err = New(config)
	assert.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "loghosetest-applog", l.Spec().Id())
	assert.NotNil(t, l.NotifyChannel())
}

func TestTransformApi(t *testing.T) {

	config := NewConfig()
	config.Spec = specApplog
	l, err := New(config)
	require.NoError(t, err)

	event := entity.TransformEvent{
		InvocationID: "inv-1",
		Records: []entity.Record{
			{RecordID: "a", Data: base64.StdEncoding.EncodeToString([]byte(`{"x":1}`))},
			{RecordID: "b", Data: "%%% not base64 %%%"},
		},
	}

	response := l.Transform(context.Background(), event)
	require.Len(t, response.Records, 2)
	assert.Equal(t, entity.ResultOk, response.Records[0].Result)
	assert.Equal(t, entity.ResultProcessingFailed, response.Records[1].Result)

	// Failed records are reported on the notification channel
	notification := <-l.NotifyChannel()
	assert.Equal(t, "WARN", notification.Level)
	assert.Contains(t, notification.Message, "b")

	// Metrics reflect the processed batch
	metrics := l.Metrics()
	assert.Equal(t, int64(1), metrics.Invocations)
	assert.Equal(t, int64(2), metrics.RecordsProcessed)
	assert.Equal(t, int64(1), metrics.RecordsFailed)
	assert.Equal(t, int64(0), metrics.RecordsDropped)
	assert.Positive(t, metrics.BytesProcessed)

	metrics.Reset()
	assert.Zero(t, metrics.Snapshot().RecordsProcessed)
}

func TestEnrichEvent(t *testing.T) {

	event := []byte(`{"a":1}`)
	enriched, err := EnrichEvent(event, "tenant", "acme")
	assert.NoError(t, err)
	assert.Equal(t, "acme", gjson.GetBytes(enriched, "tenant").String())
	assert.Equal(t, int64(1), gjson.GetBytes(enriched, "a").Int())
}
