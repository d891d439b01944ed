package monitoring

import (
	"net/http"
	"strings"
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounters map[string]int64

func (f fakeCounters) Counters() map[string]int64 { return f }

func TestMonitorCollectorExportsCounters(t *testing.T) {
	src := fakeCounters{"checkouts": 3, "transitions": 2}
	c := NewMonitorCollector(src)

	assert.Equal(t, 2, promtest.CollectAndCount(c))
	expected := `
# HELP bookstore_checkouts_total Bookstore counter checkouts.
# TYPE bookstore_checkouts_total counter
bookstore_checkouts_total 3
`
	require.NoError(t, promtest.CollectAndCompare(c, strings.NewReader(expected), "bookstore_checkouts_total"))
}

func TestHTTPMetricsUsesRouteTemplate(t *testing.T) {
	app := iris.New()
	app.UseGlobal(HTTPMetrics("test"))
	app.Get("/books/{id:int64}", func(ctx iris.Context) {
		ctx.StatusCode(http.StatusNoContent)
	})
	reg := NewRegistry(fakeCounters{"checkouts": 1})
	app.Get("/metrics", Handler(reg))

	e := httptest.New(t, app)
	e.GET("/books/1").Expect().Status(http.StatusNoContent)
	e.GET("/books/2").Expect().Status(http.StatusNoContent)

	got := promtest.ToFloat64(httpRequestTotal.WithLabelValues("test", http.MethodGet, "/books/{id:int64}", "204"))
	assert.Equal(t, float64(2), got)

	body := e.GET("/metrics").Expect().Status(http.StatusOK).Body().Raw()
	assert.Contains(t, body, "bookstore_checkouts_total 1")
	assert.Contains(t, body, "bookstore_http_requests_total")
}
