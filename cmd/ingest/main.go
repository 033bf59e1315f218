// Lambda entrypoint for the HTTP ingress: accepts a POSTed JSON body and
// forwards it as a single-record write into the delivery pipeline,
// returning the pipeline's write acknowledgment to the caller.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/google/uuid"

	"github.com/loghose/loghose/entity"
	"github.com/loghose/loghose/internal/pkg/ingest"
)

var defaultSpec = []byte(`
{
   "namespace": "loghose",
   "streamIdSuffix": "applog",
   "version": 1,
   "description": "Default application log stream ingress"
}`)

func main() {
	ctx := context.Background()

	ingester, err := newIngester(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return handleRequest(ctx, ingester, req)
	})
}

func newIngester(ctx context.Context) (*ingest.Ingester, error) {
	specData := []byte(os.Getenv("LOGHOSE_SPEC"))
	if len(specData) == 0 {
		specData = defaultSpec
	}
	spec, err := entity.NewSpec(specData)
	if err != nil {
		return nil, err
	}

	// Deploy-time values override the spec, so a single spec document can
	// be shared across environments.
	if name := os.Getenv("DELIVERY_STREAM_NAME"); name != "" {
		spec.Ingest.DeliveryStreamName = name
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return ingest.NewIngester(
		entity.Config{Spec: spec, ID: uuid.New().String(), Log: true},
		firehose.NewFromConfig(cfg),
		[]byte(os.Getenv("SEAL_KEY")),
	)
}

func handleRequest(ctx context.Context, ingester *ingest.Ingester, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return errorResponse(http.StatusBadRequest, "request body is not valid base64"), nil
		}
		body = decoded
	}

	ack, err := ingester.Ingest(ctx, body)
	if err != nil {
		if errors.Is(err, ingest.ErrNotJson) {
			return errorResponse(http.StatusBadRequest, err.Error()), nil
		}
		return errorResponse(http.StatusInternalServerError, err.Error()), nil
	}

	respBody, _ := json.Marshal(ack)
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(respBody),
	}, nil
}

func errorResponse(status int, message string) events.APIGatewayProxyResponse {
	respBody, _ := json.Marshal(map[string]string{"error": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(respBody),
	}
}
