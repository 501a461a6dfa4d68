// internal/engine/static/driver_test.go
package static

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/datalayer/internal/datalayer"
	"github.com/law-makers/datalayer/internal/engine"
)

const instrumentedPage = `<!DOCTYPE html>
<html>
<head>
	<title>Shop</title>
	<script>
	(function(w,d,s,l){w[l]=w[l]||[];w[l].push({event:'gtm.js'});
	var f=d.getElementsByTagName(s)[0];f.parentNode.insertBefore(d.createElement(s),f);
	})(window,document,'script','dataLayer');
	</script>
	<script src="/gtm.js"></script>
	<script type="application/ld+json">{"@type": "Product"}</script>
</head>
<body>
	<script>
	window.dataLayer.push({event: 'moduleImpression', module: {id: 'hero', position: 1}});
	setTimeout(function () {
		dataLayer.push({event: 'moduleImpression', module: {id: 'footer', position: 9}});
	}, 1500);
	setTimeout(function () {
		dataLayer.push({event: 'lateImpression', module: {id: 'never'}});
	}, 60000);
	console.log('instrumentation ready');
	</script>
	<a href="/next">Next</a>
</body>
</html>`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func snapshotEvents(t *testing.T, d *Driver) []string {
	t.Helper()
	raw, err := d.Snapshot(context.Background())
	require.NoError(t, err)
	v, err := datalayer.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, datalayer.KindArray, v.Kind(), "snapshot: %s", raw)

	var events []string
	for _, item := range v.Fields() {
		ev, _ := item.Value.Field("event")
		events = append(events, ev.String())
	}
	return events
}

func TestDriver_InlineScriptsAndTimers(t *testing.T) {
	server := serve(t, http.StatusOK, instrumentedPage)
	ctx := context.Background()

	d := New(Options{UserAgent: "TestDriver/1.0"})
	defer d.Close()

	require.NoError(t, d.Navigate(ctx, server.URL))
	assert.Equal(t, []string{"gtm.js", "moduleImpression"}, snapshotEvents(t, d))

	require.NoError(t, d.ScrollToBottom(ctx))
	require.NoError(t, d.ActivateAllLinks(ctx))
	require.NoError(t, d.Settle(ctx, 2*time.Second))

	assert.Equal(t, []string{"gtm.js", "moduleImpression", "moduleImpression"}, snapshotEvents(t, d))
}

func TestDriver_SettleAccumulatesVirtualTime(t *testing.T) {
	page := `<script>
	window.dataLayer = [];
	var n = 0;
	var id = setInterval(function () {
		n++;
		dataLayer.push({event: 'tick' + n});
		if (n === 3) { clearInterval(id); }
	}, 1000);
	</script>`
	server := serve(t, http.StatusOK, page)
	ctx := context.Background()

	d := New(Options{})
	require.NoError(t, d.Navigate(ctx, server.URL))

	require.NoError(t, d.Settle(ctx, 1500*time.Millisecond))
	assert.Equal(t, []string{"tick1"}, snapshotEvents(t, d))

	require.NoError(t, d.Settle(ctx, 5*time.Second))
	assert.Equal(t, []string{"tick1", "tick2", "tick3"}, snapshotEvents(t, d))
}

func TestDriver_AbsentQueue(t *testing.T) {
	server := serve(t, http.StatusOK, `<html><body><p>No tags here</p></body></html>`)

	d := New(Options{})
	require.NoError(t, d.Navigate(context.Background(), server.URL))

	raw, err := d.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestDriver_CustomQueueName(t *testing.T) {
	server := serve(t, http.StatusOK, `<script>window.events = [{event: 'custom'}];</script>`)

	d := New(Options{QueueName: "events"})
	require.NoError(t, d.Navigate(context.Background(), server.URL))
	assert.Equal(t, []string{"custom"}, snapshotEvents(t, d))
}

func TestDriver_UnserializableEntryBecomesNull(t *testing.T) {
	page := `<script>
	var cyclic = {event: 'cyclic'};
	cyclic.self = cyclic;
	window.dataLayer = [{event: 'ok'}, cyclic];
	</script>`
	server := serve(t, http.StatusOK, page)

	d := New(Options{})
	require.NoError(t, d.Navigate(context.Background(), server.URL))

	raw, err := d.Snapshot(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"event":"ok"},null]`, string(raw))
}

func TestDriver_SendsHeaders(t *testing.T) {
	var gotUA, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Consent")
		w.Write([]byte(`<html></html>`))
	}))
	defer server.Close()

	d := New(Options{UserAgent: "TestDriver/1.0", Headers: map[string]string{"X-Consent": "granted"}})
	require.NoError(t, d.Navigate(context.Background(), server.URL))

	assert.Equal(t, "TestDriver/1.0", gotUA)
	assert.Equal(t, "granted", gotCustom)
}

func TestDriver_NavigationErrors(t *testing.T) {
	server := serve(t, http.StatusInternalServerError, `oops`)

	d := New(Options{})
	err := d.Navigate(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrNavigation))

	code, ok := engine.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, engine.ErrCodeNavigation, code)
}

func TestDriver_RequiresNavigate(t *testing.T) {
	d := New(Options{})

	_, err := d.Snapshot(context.Background())
	assert.ErrorIs(t, err, engine.ErrUnsupported)
	assert.ErrorIs(t, d.Settle(context.Background(), time.Second), engine.ErrUnsupported)
}

func TestIsClassicScript(t *testing.T) {
	tests := map[string]bool{
		"":                       true,
		"text/javascript":        true,
		"application/ecmascript": true,
		"module":                 false,
		"application/ld+json":    false,
		"text/template":          false,
	}
	for typ, want := range tests {
		assert.Equal(t, want, isClassicScript(typ), "type %q", typ)
	}
}
