package entity

import "fmt"

// Result is the per-record classification returned to the delivery stream.
// The values are the literal strings expected by the Firehose transform
// protocol, so a TransformResponse can be marshalled as-is.
type Result string

const (
	ResultInvalid          Result = "invalid"
	ResultOk               Result = "Ok"
	ResultProcessingFailed Result = "ProcessingFailed"
	ResultDropped          Result = "Dropped"
)

// ParseResult maps a raw classification string to a Result, returning
// ResultInvalid together with an error for anything outside the protocol
// vocabulary. Validation is centralized here; callers should not compare
// raw strings.
func ParseResult(s string) (Result, error) {
	switch Result(s) {
	case ResultOk, ResultProcessingFailed, ResultDropped:
		return Result(s), nil
	}
	return ResultInvalid, fmt.Errorf("invalid record result: %q", s)
}

func (r Result) Valid() bool {
	return r == ResultOk || r == ResultProcessingFailed || r == ResultDropped
}

// Record is a single input record as handed over by the delivery stream.
// Data holds the base64 transport encoding of the payload; it is decoded
// by the transformer, not during envelope unmarshalling, so a malformed
// record can be classified on its own instead of failing the whole batch.
type Record struct {
	RecordID string `json:"recordId"`
	Data     string `json:"data"`
}

// TransformedRecord is the per-record transform outcome. RecordID is
// always echoed verbatim from the corresponding input record.
// On ResultProcessingFailed, Data carries the original input bytes
// unchanged so the backup store receives recoverable data.
type TransformedRecord struct {
	RecordID string `json:"recordId"`
	Result   Result `json:"result"`
	Data     string `json:"data"`
}

// TransformEvent is the invocation envelope of the delivery stream's
// transform call.
type TransformEvent struct {
	InvocationID      string   `json:"invocationId"`
	DeliveryStreamArn string   `json:"deliveryStreamArn"`
	Region            string   `json:"region"`
	Records           []Record `json:"records"`
}

// TransformResponse is returned to the delivery stream. It must contain
// exactly one entry per input record; the delivery stream treats any
// omission or unknown result value as a failure of the whole invocation.
type TransformResponse struct {
	Records []TransformedRecord `json:"records"`
}
