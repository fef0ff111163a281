package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedEngine(t *testing.T) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/jobs/:name", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })
	r.GET("/api/tax-rules/:id/provider", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, recorder
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestGinMiddlewareNamesSpanByRoute(t *testing.T) {
	r, recorder := newTracedEngine(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tax-rules/rule-1/provider", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "taxbridge.http GET /api/tax-rules/:id/provider", spans[0].Name())
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "tax-rules", attrs["taxbridge.api"].AsString())
	assert.Equal(t, int64(200), attrs["http.response.status_code"].AsInt64())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestGinMiddlewareTagsJobAndServerErrors(t *testing.T) {
	r, recorder := newTracedEngine(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/jobs/log-retention", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "jobs", attrs["taxbridge.api"].AsString())
	assert.Equal(t, "log-retention", attrs["taxbridge.job"].AsString())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestGinMiddlewareSkipsHealthEndpoint(t *testing.T) {
	r, recorder := newTracedEngine(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Empty(t, recorder.Ended())
}

func TestAPIArea(t *testing.T) {
	assert.Equal(t, "nexus", apiArea("/api/nexus/states"))
	assert.Equal(t, "taxjar", apiArea("/api/taxjar/logs"))
	assert.Equal(t, "other", apiArea("/health"))
	assert.Equal(t, "other", apiArea(""))
}
