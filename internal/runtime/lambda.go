package runtime

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

const (
	// PayloadAPIGatewayV1 is the REST API (v1) proxy integration shape.
	PayloadAPIGatewayV1 = "api-gateway-v1"
	// PayloadAPIGatewayV2 is the HTTP API (v2) integration shape.
	PayloadAPIGatewayV2 = "api-gateway-v2"
	// PayloadLambdaURL is the Lambda Function URL shape.
	PayloadLambdaURL = "lambda-url"
)

// proxiedRequest is the payload-type independent view of a Lambda HTTP invocation.
type proxiedRequest struct {
	method, path, rawQuery string
	headers                map[string]string
	body                   string
	base64                 bool
}

// HandleEvent is the Lambda handler for the runtime. The invocation is replayed through the
// same routes as the standalone server.
func (r *Runtime) HandleEvent(ctx context.Context, payload json.RawMessage) (any, error) {
	r.logger.Info("received lambda invocation", slog.String("payloadType", r.lambdaPayloadType))

	var preq proxiedRequest
	switch r.lambdaPayloadType {
	case PayloadAPIGatewayV1:
		var req events.APIGatewayProxyRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, errors.Wrap(err, "failed to decode API Gateway v1 request")
		}
		preq = proxiedRequest{
			method:   req.HTTPMethod,
			path:     req.Path,
			rawQuery: encodeQuery(req.QueryStringParameters),
			headers:  req.Headers,
			body:     req.Body,
			base64:   req.IsBase64Encoded,
		}
	case PayloadAPIGatewayV2:
		var req events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, errors.Wrap(err, "failed to decode API Gateway v2 request")
		}
		preq = proxiedRequest{
			method:   req.RequestContext.HTTP.Method,
			path:     req.RawPath,
			rawQuery: req.RawQueryString,
			headers:  req.Headers,
			body:     req.Body,
			base64:   req.IsBase64Encoded,
		}
	case PayloadLambdaURL:
		var req events.LambdaFunctionURLRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, errors.Wrap(err, "failed to decode Lambda Function URL request")
		}
		preq = proxiedRequest{
			method:   req.RequestContext.HTTP.Method,
			path:     req.RawPath,
			rawQuery: req.RawQueryString,
			headers:  req.Headers,
			body:     req.Body,
			base64:   req.IsBase64Encoded,
		}
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", r.lambdaPayloadType)
	}

	status, headers, body, err := r.replay(ctx, preq)
	if err != nil {
		return nil, err
	}
	switch r.lambdaPayloadType {
	case PayloadAPIGatewayV1:
		return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: body}, nil
	case PayloadAPIGatewayV2:
		return events.APIGatewayV2HTTPResponse{StatusCode: status, Headers: headers, Body: body}, nil
	default:
		return events.LambdaFunctionURLResponse{StatusCode: status, Headers: headers, Body: body}, nil
	}
}

func (r *Runtime) replay(ctx context.Context, preq proxiedRequest) (int, map[string]string, string, error) {
	body := []byte(preq.body)
	if preq.base64 {
		decoded, err := base64.StdEncoding.DecodeString(preq.body)
		if err != nil {
			return 0, nil, "", errors.Wrap(err, "failed to decode base64 body")
		}
		body = decoded
	}

	target := preq.path
	if preq.rawQuery != "" {
		target += "?" + preq.rawQuery
	}
	req, err := http.NewRequestWithContext(ctx, preq.method, target, bytes.NewReader(body))
	if err != nil {
		return 0, nil, "", errors.Wrap(err, "failed to build request")
	}
	for k, v := range preq.headers {
		req.Header.Set(k, v)
	}

	w := newBufferedResponse()
	r.ServeHTTP(w, req)

	if w.status == 0 {
		w.status = http.StatusOK
	}
	headers := make(map[string]string, len(w.header))
	for k := range w.header {
		headers[k] = w.header.Get(k)
	}
	return w.status, headers, w.body.String(), nil
}

func encodeQuery(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}

// bufferedResponse collects a response in memory for the Lambda reply.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: http.Header{}}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}
