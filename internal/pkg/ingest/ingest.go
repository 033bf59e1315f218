// Package ingest implements the ingress write into the delivery
// pipeline: a posted JSON body is optionally sealed and forwarded as a
// single-record write to the delivery stream, returning the pipeline's
// write acknowledgment to the caller.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/aws/aws-sdk-go-v2/service/firehose/types"
	"github.com/teltech/logger"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/loghose/loghose/entity"
	"github.com/loghose/loghose/pkg/notify"
	"github.com/loghose/loghose/pkg/seal"
)

var (
	ErrNoDeliveryStream = errors.New("spec has no ingest.deliveryStreamName")
	ErrNotJson          = errors.New("request body is not valid JSON")
)

// FirehoseAPI is the slice of the Firehose client used by the Ingester.
type FirehoseAPI interface {
	PutRecord(ctx context.Context, params *firehose.PutRecordInput, optFns ...func(*firehose.Options)) (*firehose.PutRecordOutput, error)
}

// Ack is the write acknowledgment returned to the ingress caller.
// Encrypted reports the delivery stream's server-side encryption status;
// Sealed reports whether payload sealing was applied by this component.
type Ack struct {
	RecordID  string `json:"recordId"`
	Encrypted bool   `json:"encrypted"`
	Sealed    bool   `json:"sealed"`
}

type Ingester struct {
	spec     *entity.Spec
	client   FirehoseAPI
	sealKey  []byte
	notifier *notify.Notifier
}

// NewIngester creates an Ingester for the stream in c.Spec. The seal key
// is only required when the spec has a seal block.
func NewIngester(c entity.Config, client FirehoseAPI, sealKey []byte) (*Ingester, error) {
	if c.Spec.Ingest.DeliveryStreamName == "" {
		return nil, ErrNoDeliveryStream
	}
	if c.Spec.Ingest.Seal != nil && len(sealKey) != seal.KeySize {
		return nil, seal.ErrInvalidKeySize
	}

	var log *logger.Log
	if c.Log {
		log = logger.New()
	}
	return &Ingester{
		spec:     c.Spec,
		client:   client,
		sealKey:  sealKey,
		notifier: notify.New(c.NotifyChan, log, 2, "ingester", c.ID, c.Spec.Id()),
	}, nil
}

// Ingest writes one JSON event to the delivery stream and returns the
// write acknowledgment. A newline is appended to the record so delivered
// records stay line-delimited after delivery-side concatenation.
func (i *Ingester) Ingest(ctx context.Context, body []byte) (Ack, error) {

	if !gjson.ValidBytes(body) {
		return Ack{}, ErrNotJson
	}

	body, sealed, err := i.sealPayload(body)
	if err != nil {
		return Ack{}, err
	}

	out, err := i.client.PutRecord(ctx, &firehose.PutRecordInput{
		DeliveryStreamName: aws.String(i.spec.Ingest.DeliveryStreamName),
		Record:             &types.Record{Data: append(body, '\n')},
	})
	if err != nil {
		i.notifier.Notify(entity.NotifyLevelError, "delivery stream write failed: %v", err)
		return Ack{}, fmt.Errorf("could not write record to delivery stream %s: %w", i.spec.Ingest.DeliveryStreamName, err)
	}

	i.notifier.Notify(entity.NotifyLevelDebug, "record %s written to delivery stream", aws.ToString(out.RecordId))

	return Ack{
		RecordID:  aws.ToString(out.RecordId),
		Encrypted: aws.ToBool(out.Encrypted),
		Sealed:    sealed,
	}, nil
}

// sealPayload seals the configured payload field when the spec asks for
// it. Paths use gjson syntax; a literal dot in a key must be escaped in
// the spec ("ApplicationData\.Payload").
func (i *Ingester) sealPayload(body []byte) ([]byte, bool, error) {

	sealSpec := i.spec.Ingest.Seal
	if sealSpec == nil {
		return body, false, nil
	}
	if sealSpec.FlagKey != "" && gjson.GetBytes(body, sealSpec.FlagKey).String() != "true" {
		return body, false, nil
	}

	value := gjson.GetBytes(body, sealSpec.PayloadKey)
	if !value.Exists() {
		return body, false, nil
	}

	sealedValue, err := seal.Seal([]byte(value.String()), i.sealKey)
	if err != nil {
		return nil, false, err
	}

	body, err = sjson.SetBytes(body, sealSpec.PayloadKey, sealedValue)
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}
