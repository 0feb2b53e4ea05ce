package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestListenServesCollectors(t *testing.T) {
	srv, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer func() { _ = srv.Shutdown(context.Background()) }()

	FormEvents.WithLabelValues("started").Inc()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), `bot_form_events_total{event="started"}`) {
		t.Fatalf("form counter missing from scrape:\n%s", body)
	}
}
