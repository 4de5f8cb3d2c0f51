package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

var acme = domain.Job{ID: "j1", Title: "Backend Engineer", Company: "Acme", Location: "Remote", PostedDate: "2025-01-14"}

func TestAddTrackingParams(t *testing.T) {
	got := AddTrackingParams("https://acme.com/apply?utm_source=old&keep=1", acme, "weareaiworkers")

	u, err := url.Parse(got)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "acme.com", u.Host)
	assert.Equal(t, "/apply", u.Path)
	assert.Equal(t, "1", q.Get("keep"))
	assert.Equal(t, "weareaiworkers", q.Get("utm_source"))
	assert.Len(t, q["utm_source"], 1)
	assert.Equal(t, "referral", q.Get("utm_medium"))
	assert.Equal(t, "job_listing", q.Get("utm_campaign"))
	assert.Equal(t, "Acme_Backend_Engineer", q.Get("utm_content"))
	assert.Equal(t, "j1", q.Get("utm_term"))
	assert.Equal(t, "weareaiworkers", q.Get("ref"))
	assert.Equal(t, "j1", q.Get("job_id"))
}

func TestAddTrackingParamsEdgeCases(t *testing.T) {
	assert.Equal(t, "", AddTrackingParams("", acme, ""))
	assert.Equal(t, "not a url", AddTrackingParams("not a url", acme, ""))

	got := AddTrackingParams("https://acme.com", acme, "")
	assert.Contains(t, got, "utm_source="+DefaultSource)
}

type recordingSink struct {
	fields []map[string]any
	err    error
}

func (s *recordingSink) Append(_ context.Context, fields map[string]any) error {
	s.fields = append(s.fields, fields)
	return s.err
}

func TestStreamBeacon(t *testing.T) {
	sink := &recordingSink{}
	at := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	event := NewClickEvent(acme, "https://acme.com/apply", "", at)

	require.NoError(t, NewStreamBeacon(sink).Track(context.Background(), event))
	require.Len(t, sink.fields, 1)
	assert.Equal(t, EventJobClick, sink.fields[0]["event"])
	assert.Equal(t, "j1", sink.fields[0]["job_id"])
	assert.Equal(t, "Backend Engineer", sink.fields[0]["job_title"])
	assert.Equal(t, DefaultSource, sink.fields[0]["source"])
	assert.Equal(t, "2025-01-15T10:00:00Z", sink.fields[0]["timestamp"])
}

func TestFireToleratesNilAndFailures(t *testing.T) {
	event := NewClickEvent(acme, "https://acme.com", "", time.Now())

	Fire(context.Background(), nil, event, logger.NewNop())

	sink := &recordingSink{err: errors.New("redis down")}
	Fire(context.Background(), NewStreamBeacon(sink), event, logger.NewNop())
	assert.Len(t, sink.fields, 1)
}

func TestMulti(t *testing.T) {
	ok := &recordingSink{}
	failing := &recordingSink{err: errors.New("boom")}
	m := Multi{NewLogBeacon(logger.NewNop()), nil, NewStreamBeacon(failing), NewStreamBeacon(ok)}

	err := m.Track(context.Background(), NewClickEvent(acme, "https://acme.com", "", time.Now()))
	assert.Error(t, err)
	assert.Len(t, ok.fields, 1)
	assert.Len(t, failing.fields, 1)
}

func TestSheetsBeacon(t *testing.T) {
	var rows [][]interface{}
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		var vr struct {
			Values [][]interface{} `json:"values"`
		}
		_ = json.Unmarshal(body, &vr)
		rows = append(rows, vr.Values...)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-1"}`)
	}))
	defer srv.Close()

	b, err := NewSheetsBeacon(context.Background(), SheetsConfig{
		SpreadsheetID: "sheet-1",
		Options: []option.ClientOption{
			option.WithEndpoint(srv.URL + "/"),
			option.WithoutAuthentication(),
			option.WithHTTPClient(srv.Client()),
		},
	})
	require.NoError(t, err)

	event := NewClickEvent(acme, "https://acme.com/apply", "", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, b.Track(context.Background(), event))

	assert.True(t, strings.Contains(path, "sheet-1"), "unexpected path %s", path)
	require.Len(t, rows, 1)
	assert.Equal(t, "j1", rows[0][2])
	assert.Equal(t, "Acme", rows[0][3])
}

func TestNewSheetsBeaconRequiresSpreadsheet(t *testing.T) {
	_, err := NewSheetsBeacon(context.Background(), SheetsConfig{})
	assert.Error(t, err)
}
