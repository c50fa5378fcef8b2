// Package api exposes the thermostats and the command transforms over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"github.com/r3labs/sse/v2"

	"thermostat/device"
	"thermostat/home"
	"thermostat/integration/zigbee"
	"thermostat/logger"
	"thermostat/transform"
)

// Stream is the sse stream id carrying thermostat status updates.
const Stream = "thermostats"

const maxBody = 1 << 10

type Server struct {
	home   *home.Home
	log    *logger.Logger
	router *mux.Router
	events *sse.Server
}

func New(h *home.Home, log *logger.Logger) *Server {
	s := &Server{
		home:   h,
		log:    log,
		router: mux.NewRouter(),
		events: sse.New(),
	}

	s.events.AutoReplay = false
	s.events.CreateStream(Stream)

	s.router.HandleFunc("/thermostats", s.list).Methods(http.MethodGet)
	s.router.HandleFunc("/thermostats/{room}/{name}", s.get).Methods(http.MethodGet)
	s.router.HandleFunc("/thermostats/{name}", s.get).Methods(http.MethodGet)
	s.router.HandleFunc("/thermostats/{room}/{name}/enable", s.enable).Methods(http.MethodPut)
	s.router.HandleFunc("/thermostats/{name}/enable", s.enable).Methods(http.MethodPut)
	s.router.HandleFunc("/transform/{mode}", s.transform).Methods(http.MethodPost)
	s.router.HandleFunc("/events", s.events.ServeHTTP).Methods(http.MethodGet)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) Close() {
	s.events.Close()
}

// Publish forwards a thermostat update to the event stream, it is a zigbee.Listener.
func (s *Server) Publish(e zigbee.Event) {
	b, err := json.Marshal(e.Status)
	if err != nil {
		s.log.Warn(err)
		return
	}

	s.events.Publish(Stream, &sse.Event{Event: []byte("status"), Data: b})
}

func nameFromVars(r *http.Request) device.InternalName {
	vars := mux.Vars(r)
	if room, ok := vars["room"]; ok {
		return device.InternalName(room + "/" + vars["name"])
	}

	return device.InternalName(vars["name"])
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnf("Failed to write response: %v", err)
	}
}

func (s *Server) thermostat(w http.ResponseWriter, r *http.Request) (*zigbee.Thermostat, bool) {
	name := nameFromVars(r)
	t, err := home.Device[*zigbee.Thermostat](s.home, name)
	if err != nil {
		if !errors.Is(err, home.ErrNotFound) {
			s.log.Debug(err)
		}
		http.Error(w, "thermostat not found", http.StatusNotFound)
		return nil, false
	}

	return t, true
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	statuses := []zigbee.Status{}
	for _, t := range home.Devices[*zigbee.Thermostat](s.home) {
		statuses = append(statuses, t.Status())
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})

	s.writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	t, ok := s.thermostat(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, t.Status())
}

// enable takes the same input as the MQTT enable topic, surrounding whitespace is ignored.
func (s *Server) enable(w http.ResponseWriter, r *http.Request) {
	t, ok := s.thermostat(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := t.Command(strings.TrimSpace(string(body))); err != nil {
		s.log.Warn(err)
		http.Error(w, "failed to send command", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// transform runs a control mode transform on the raw request body.
func (s *Server) transform(w http.ResponseWriter, r *http.Request) {
	mode, err := transform.ParseMode(mux.Vars(r)["mode"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := transform.Command(mode)(string(body))
	if out == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := io.WriteString(w, out); err != nil {
		s.log.Warnf("Failed to write response: %v", err)
	}
}
