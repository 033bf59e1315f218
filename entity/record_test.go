package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {

	for _, valid := range []string{"Ok", "ProcessingFailed", "Dropped"} {
		result, err := ParseResult(valid)
		assert.NoError(t, err)
		assert.True(t, result.Valid())
		assert.Equal(t, valid, string(result))
	}

	for _, invalid := range []string{"", "ok", "OK", "Failed", "Accepted", "invalid"} {
		result, err := ParseResult(invalid)
		assert.Error(t, err)
		assert.Equal(t, ResultInvalid, result)
		assert.False(t, result.Valid())
	}
}

func TestTransformEventWireFormat(t *testing.T) {

	// The envelope keeps data as the raw base64 string; decoding is owned
	// by the transformer so one malformed record cannot fail the batch.
	eventJson := []byte(`
	{
	   "invocationId": "inv-1",
	   "deliveryStreamArn": "arn:aws:firehose:eu-west-1:123456789012:deliverystream/applog",
	   "region": "eu-west-1",
	   "records": [
	      {"recordId": "rec-1", "data": "eyJ4IjoxfQ=="},
	      {"recordId": "rec-2", "data": "%%% not base64 %%%"}
	   ]
	}`)

	var event TransformEvent
	err := json.Unmarshal(eventJson, &event)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", event.InvocationID)
	require.Len(t, event.Records, 2)
	assert.Equal(t, "rec-1", event.Records[0].RecordID)
	assert.Equal(t, "eyJ4IjoxfQ==", event.Records[0].Data)
	assert.Equal(t, "%%% not base64 %%%", event.Records[1].Data)

	response := TransformResponse{
		Records: []TransformedRecord{
			{RecordID: "rec-1", Result: ResultOk, Data: "eyJ4IjoxfQ=="},
		},
	}
	respJson, err := json.Marshal(response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"records":[{"recordId":"rec-1","result":"Ok","data":"eyJ4IjoxfQ=="}]}`, string(respJson))
}
