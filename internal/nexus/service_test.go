package nexus

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/smallbiznis/taxbridge/internal/taxjar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubGateway struct {
	result taxjar.Result
	method string
	path   string
}

func (g *stubGateway) Send(_ context.Context, method, path string, _ map[string]string, _ []byte) taxjar.Result {
	g.method = method
	g.path = path
	return g.result
}

func newTestService(t *testing.T, result taxjar.Result) (*Service, *stubGateway) {
	t.Helper()
	gw := &stubGateway{result: result}
	return NewService(Params{Gateway: gw, Log: zaptest.NewLogger(t)}), gw
}

func marshal(t *testing.T, env Envelope) string {
	t.Helper()
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return string(b)
}

func TestGetNexusRegionsSuccess(t *testing.T) {
	svc, gw := newTestService(t, taxjar.Success(http.StatusOK, []byte(`{"regions":[{"country_code":"US","region_code":"CA"}]}`)))

	env := svc.GetNexusRegions(context.Background())

	assert.Equal(t, http.MethodGet, gw.method)
	assert.Equal(t, "/nexus/regions", gw.path)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.JSONEq(t, `{"status":200,"data":{"regions":[{"country_code":"US","region_code":"CA"}]}}`, marshal(t, env))
}

func TestGetNexusRegionsPassesThroughNon200Success(t *testing.T) {
	svc, _ := newTestService(t, taxjar.Success(http.StatusAccepted, []byte(`[]`)))

	env := svc.GetNexusRegions(context.Background())

	assert.Equal(t, http.StatusAccepted, env.Status)
	assert.JSONEq(t, `{"status":202,"data":[]}`, marshal(t, env))
}

func TestGetNexusRegionsMalformedSuccessYieldsNullData(t *testing.T) {
	svc, _ := newTestService(t, taxjar.Success(http.StatusOK, []byte(`<html>oops`)))

	env := svc.GetNexusRegions(context.Background())

	assert.Nil(t, env.Data)
	assert.JSONEq(t, `{"status":200,"data":null}`, marshal(t, env))
}

func TestGetNexusRegionsFailureMirrorsStatus(t *testing.T) {
	svc, _ := newTestService(t, taxjar.Failure(http.StatusNotFound, []byte(`{"error":"not found"}`)))

	env := svc.GetNexusRegions(context.Background())

	assert.Equal(t, http.StatusNotFound, env.Status)
	assert.Equal(t, map[string]any{"error": "not found"}, env.Error)
	assert.JSONEq(t, `{"status":404,"error":{"error":"not found"}}`, marshal(t, env))
}

func TestGetNexusRegionsNonJSONErrorIsRawString(t *testing.T) {
	svc, _ := newTestService(t, taxjar.Failure(http.StatusBadGateway, []byte("plain text error")))

	env := svc.GetNexusRegions(context.Background())

	assert.Equal(t, http.StatusBadGateway, env.Status)
	assert.Equal(t, "plain text error", env.Error)
	assert.JSONEq(t, `{"status":502,"error":"plain text error"}`, marshal(t, env))
}

func TestGetNexusRegionsUnexpected(t *testing.T) {
	svc, _ := newTestService(t, taxjar.Unexpected("dial tcp: i/o timeout"))

	env := svc.GetNexusRegions(context.Background())

	assert.Equal(t, http.StatusInternalServerError, env.Status)
	assert.JSONEq(t, `{"status":500,"error":"Unexpected error","message":"dial tcp: i/o timeout"}`, marshal(t, env))
}
