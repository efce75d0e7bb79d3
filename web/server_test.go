package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Molina/esp8266-artnet-dmx512/config"
)

func newTestServer(t *testing.T) (*Server, *config.Store) {
	t.Helper()
	store := config.NewStore(filepath.Join(t.TempDir(), "config.yaml"), config.Default())
	s := NewServer(store, func() Status {
		return Status{Frames: 10, Drops: 2, ReceiveFPS: 44.0}
	}, log.New(io.Discard))
	return s, store
}

func TestStatusEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, uint64(10), st.Frames)
	assert.Equal(t, uint64(2), st.Drops)
	assert.Equal(t, 44.0, st.ReceiveFPS)
	assert.GreaterOrEqual(t, st.UptimeSeconds, 0.0)
}

func TestStatusRejectsPost(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestConfigGet(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleConfig(rec, httptest.NewRequest(http.MethodGet, "/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var cfg config.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, config.Default(), cfg)
}

func TestConfigPostUpdatesAndClamps(t *testing.T) {
	s, store := newTestServer(t)
	body := strings.NewReader(`{"universe": 4, "channels": 4096}`)
	rec := httptest.NewRecorder()
	s.handleConfig(rec, httptest.NewRequest(http.MethodPost, "/config", body))

	require.Equal(t, http.StatusOK, rec.Code)
	got := store.Get()
	assert.Equal(t, uint16(4), got.Universe)
	assert.Equal(t, 512, got.Channels)
	//fields absent from the request keep their values
	assert.Equal(t, 25, got.Delay)
}

func TestConfigPostRejectsBadJSON(t *testing.T) {
	s, store := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleConfig(rec, httptest.NewRequest(http.MethodPost, "/config", strings.NewReader("{oops")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, config.Default(), store.Get())
}
