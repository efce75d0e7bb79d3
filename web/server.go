/*Package web serves the status and configuration HTTP endpoints. The status
endpoint mirrors what the log's periodic diagnostics show; the config endpoint
changes settings at runtime and persists them.*/
package web

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Mr-Molina/esp8266-artnet-dmx512/config"
	"github.com/Mr-Molina/esp8266-artnet-dmx512/stats"
)

// Status is the JSON body of GET /status.
type Status struct {
	UptimeSeconds   float64             `json:"uptimeSeconds"`
	Frames          uint64              `json:"frames"`
	Drops           uint64              `json:"drops"`
	ReceivedPackets uint64              `json:"receivedPackets"`
	ReceiveFPS      float64             `json:"receiveFps"`
	SendPPS         float64             `json:"sendPps"`
	Jitter          stats.JitterSummary `json:"jitter"`
}

// StatusFunc gathers the current counters.
type StatusFunc func() Status

// Server exposes the HTTP API.
type Server struct {
	store   *config.Store
	status  StatusFunc
	logger  *log.Logger
	started time.Time

	http *http.Server
}

// NewServer builds a server around a config store and a status source.
func NewServer(store *config.Store, status StatusFunc, logger *log.Logger) *Server {
	s := &Server{
		store:   store,
		status:  status,
		logger:  logger,
		started: time.Now(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/config", s.handleConfig)
	s.http = &http.Server{Handler: mux}
	return s
}

// Start listens on addr and serves in a background goroutine.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("http listening", "addr", ln.Addr())
	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", "err", err)
		}
	}()
	return nil
}

// Close shuts the listener down.
func (s *Server) Close() error {
	return s.http.Close()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st := s.status()
	st.UptimeSeconds = time.Since(s.started).Seconds()
	writeJSON(w, st)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.store.Get())
	case http.MethodPost:
		next := s.store.Get()
		if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.store.Update(func(c *config.Config) { *c = next }); err != nil {
			s.logger.Error("config update failed", "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.logger.Info("config updated",
			"universe", s.store.Get().Universe,
			"channels", s.store.Get().Channels,
			"delay", s.store.Get().Delay)
		writeJSON(w, s.store.Get())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
