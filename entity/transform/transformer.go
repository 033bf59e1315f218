package transform

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/teltech/logger"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/loghose/loghose/entity"
	"github.com/loghose/loghose/pkg/notify"
)

// Transformer is the default transformer implementation (stateless,
// immutable). It is safe for concurrent use; each invocation constructs
// all per-batch context locally.
type Transformer struct {
	spec     *entity.Spec
	notifier *notify.Notifier
}

func NewTransformer(c entity.Config) *Transformer {
	var log *logger.Log
	if c.Log {
		log = logger.New()
	}
	return &Transformer{
		spec:     c.Spec,
		notifier: notify.New(c.NotifyChan, log, 2, "transformer", c.ID, c.Spec.Id()),
	}
}

// Transform processes one batch of records from the delivery stream.
// The response always contains exactly one record per input record, in
// input order, with the input record IDs echoed verbatim. Per-record
// faults are contained and surfaced only as the record's Result value,
// so a single malformed record never diverts its siblings.
func (t *Transformer) Transform(ctx context.Context, event entity.TransformEvent) entity.TransformResponse {

	records := make([]entity.TransformedRecord, 0, len(event.Records))
	now := time.Now()

	for _, record := range event.Records {
		records = append(records, t.transformRecord(record, now))
	}

	return entity.TransformResponse{Records: records}
}

func (t *Transformer) transformRecord(record entity.Record, now time.Time) entity.TransformedRecord {

	raw, err := base64.StdEncoding.DecodeString(record.Data)
	if err != nil {
		t.notifier.Notify(entity.NotifyLevelWarn, "failed to decode record %s: %v", record.RecordID, err)
		return failedRecord(record)
	}

	if t.shouldExclude(raw) {
		return entity.TransformedRecord{
			RecordID: record.RecordID,
			Result:   entity.ResultDropped,
			Data:     record.Data,
		}
	}

	enriched, err := t.enrich(raw, now)
	if err != nil {
		t.notifier.Notify(entity.NotifyLevelWarn, "failed to transform record %s: %v", record.RecordID, err)
		return failedRecord(record)
	}

	return entity.TransformedRecord{
		RecordID: record.RecordID,
		Result:   entity.ResultOk,
		Data:     base64.StdEncoding.EncodeToString(enriched),
	}
}

// enrich adds the marker and timestamp fields to the event. Pre-existing
// marker/timestamp fields are overwritten, not duplicated, so that
// re-transforming an already transformed event refreshes the timestamp.
func (t *Transformer) enrich(raw []byte, now time.Time) ([]byte, error) {

	event := raw
	if !isJsonObject(raw) {
		wrapped, err := sjson.SetBytes([]byte(`{}`), t.spec.Transform.TextWrapKey, string(raw))
		if err != nil {
			return nil, err
		}
		event = wrapped
	}

	event, err := sjson.SetBytes(event, t.spec.Transform.MarkerKey, true)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(event, t.spec.Transform.TimestampKey, now.Unix())
}

// shouldExclude checks all exclude filter rules in the spec against the
// decoded event. Rules are OR:ed; the first matching rule excludes the
// event.
func (t *Transformer) shouldExclude(event []byte) (exclude bool) {

	for _, filter := range t.spec.Transform.ExcludeEventsWith {

		valueToCheck := gjson.GetBytes(event, filter.Key)
		if !valueToCheck.Exists() {
			if excludeIfEmpty(filter.ValueIsEmpty) {
				return true
			}
			continue
		}
		value := valueToCheck.String()

		if len(filter.Values) > 0 {
			exclude = excludeIfInBlacklist(value, filter.Values)
		} else if len(filter.ValuesNotIn) > 0 {
			exclude = excludeIfNotInWhitelist(value, filter.ValuesNotIn)
		}
		if exclude {
			break
		}
	}
	return
}

func excludeIfEmpty(filterValueIsEmpty *bool) bool {
	if filterValueIsEmpty != nil {
		if *filterValueIsEmpty {
			return true
		}
	}
	return false
}

func excludeIfInBlacklist(value string, filterValues []string) bool {
	for _, excludeIfValue := range filterValues {
		if value == excludeIfValue {
			return true
		}
	}
	return false
}

func excludeIfNotInWhitelist(value string, filterValues []string) bool {
	for _, includeIfValue := range filterValues {
		if value == includeIfValue {
			return false
		}
	}
	return true
}

// failedRecord returns the ProcessingFailed outcome for a record, with
// the original transport-encoded payload untouched so the backup store
// receives the input bytes for later recovery.
func failedRecord(record entity.Record) entity.TransformedRecord {
	return entity.TransformedRecord{
		RecordID: record.RecordID,
		Result:   entity.ResultProcessingFailed,
		Data:     record.Data,
	}
}

func isJsonObject(raw []byte) bool {
	return gjson.ValidBytes(raw) && gjson.ParseBytes(raw).IsObject()
}
