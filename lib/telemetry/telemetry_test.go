package telemetry_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"wardroster/lib/telemetry"
	"wardroster/lib/telemetry/telemetrytest"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &telemetrytest.Recorder{}
	tel := telemetry.NewScopedAPI("photos", rec)

	tel.ReportWarning("no-photo", int64(7))
	tel.ReportCount("written", 3)

	warnings := rec.Reports(telemetrytest.Warning)
	require.Len(t, warnings, 1)
	require.Equal(t, "photos: no-photo", warnings[0].Id)
	require.Equal(t, []any{int64(7)}, warnings[0].Params)

	counts := rec.Find(telemetrytest.Count, "written")
	require.Len(t, counts, 1)
	require.Equal(t, []any{int64(3)}, counts[0].Params)
}

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[id] = contents
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	rec := &telemetrytest.Recorder{}
	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New()
	telemetry.InstrumentResty(client, "test", rec, output)

	_, err := client.R().Get(server.URL)
	require.NoError(t, err)
	_, err = client.R().Get(server.URL)
	require.NoError(t, err)

	require.Len(t, rec.Find(telemetrytest.Debug, "resty.request"), 2)
	require.Len(t, rec.Find(telemetrytest.Debug, "resty.response"), 2)
	require.Contains(t, output.messages, "1")
	require.Contains(t, output.messages, "2")
	require.Contains(t, output.messages["2"], "hello")

	_, err = client.R().Get("http://127.0.0.1:0")
	require.Error(t, err)
	require.Len(t, rec.Reports(telemetrytest.Broken), 1)
}
