package taxjar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/taxbridge/internal/clock"
	obsmetrics "github.com/smallbiznis/taxbridge/internal/observability/metrics"
	obstracing "github.com/smallbiznis/taxbridge/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const csrfHeader = "X-CSRF-Token"

// Call describes one finished gateway call for recorders.
type Call struct {
	Method      string
	Path        string
	Sandbox     bool
	RequestBody []byte
	Result      Result
	StartedAt   time.Time
	Duration    time.Duration
}

// Recorder receives every gateway call. Implementations must not block for long;
// their failures never change the call's Result.
type Recorder interface {
	RecordCall(ctx context.Context, call Call)
}

type ClientParams struct {
	fx.In

	Resolver   EnvironmentResolver
	Log        *zap.Logger
	Clock      clock.Clock
	HTTPClient *http.Client        `optional:"true"`
	Recorder   Recorder            `optional:"true"`
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Client struct {
	resolver   EnvironmentResolver
	httpClient *http.Client
	recorder   Recorder
	metrics    *obsmetrics.Metrics
	clock      clock.Clock
	log        *zap.Logger
	tracer     trace.Tracer
}

func NewClient(p ClientParams) *Client {
	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Client{
		resolver:   p.Resolver,
		httpClient: httpClient,
		recorder:   p.Recorder,
		metrics:    p.Metrics,
		clock:      clk,
		log:        log.Named("taxjar.client"),
		tracer:     otel.Tracer("taxbridge/taxjar"),
	}
}

// Send issues a single request to the active TaxJar environment.
// It never returns an error: every outcome is folded into the Result.
// Caller headers are applied after the defaults and may override them.
func (c *Client) Send(ctx context.Context, method, path string, headers map[string]string, body []byte) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	env := c.resolver.Resolve()
	start := c.clock.Now()

	ctx, span := c.tracer.Start(ctx, "taxjar "+method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	result := c.do(ctx, env, method, path, headers, body)
	duration := c.clock.Now().Sub(start)

	span.SetAttributes(obstracing.SafeAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Bool("taxjar.sandbox", env.Sandbox),
		attribute.String("taxjar.outcome", string(result.Kind)),
		attribute.Int("http.status_code", result.StatusCode),
	)...)
	switch {
	case result.IsUnexpected():
		span.SetStatus(codes.Error, "transport error")
	case result.IsFailure() && result.StatusCode >= http.StatusInternalServerError:
		span.SetStatus(codes.Error, "upstream error")
	}

	c.metrics.RecordGatewayRequest(ctx, method, path, string(result.Kind), result.StatusCode, duration)
	c.logResult(method, path, env, result, duration)

	if c.recorder != nil {
		c.recorder.RecordCall(ctx, Call{
			Method:      method,
			Path:        path,
			Sandbox:     env.Sandbox,
			RequestBody: body,
			Result:      result,
			StartedAt:   start,
			Duration:    duration,
		})
	}

	return result
}

func (c *Client) do(ctx context.Context, env Environment, method, path string, headers map[string]string, body []byte) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Unexpected(fmt.Sprint(r))
		}
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, env.BaseURL+path, reader)
	if err != nil {
		return Unexpected(err.Error())
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.APIToken)
	req.Header.Set(csrfHeader, env.APIToken)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	obstracing.InjectContext(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Unexpected(err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Unexpected(err.Error())
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return Failure(resp.StatusCode, respBody)
	}
	return Success(resp.StatusCode, respBody)
}

func (c *Client) logResult(method, path string, env Environment, result Result, duration time.Duration) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Bool("sandbox", env.Sandbox),
		zap.String("outcome", string(result.Kind)),
		zap.Int64("duration_ms", duration.Milliseconds()),
	}
	switch result.Kind {
	case KindSuccess:
		c.log.Debug("taxjar request", append(fields, zap.Int("status", result.StatusCode))...)
	case KindFailure:
		c.log.Warn("taxjar request failed", append(fields, zap.Int("status", result.StatusCode))...)
	default:
		c.log.Error("taxjar request error", append(fields, zap.String("error", result.Message))...)
	}
}
