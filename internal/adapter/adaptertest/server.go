// Package adaptertest provides an in-process fake of the remote wardrobe
// service for coordinator and engine tests. It implements the full remote
// contract (batch push with idempotent creates and last-write-wins conflicts,
// image upload, idempotent delete, watermark pull) against an in-memory map,
// and can simulate losing connectivity.
package adaptertest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/lv-asc/vangarments-app-sub017/models"
)

// Server is the fake remote service. All exported methods are safe for
// concurrent use.
type Server struct {
	httpServer *httptest.Server

	mu       sync.Mutex
	offline  bool
	rejects  map[string]string // client id -> rejection code
	items    map[string]*remoteRecord
	byRemote map[string]string // remote id -> client id
	images   map[string][]byte // remote id -> uploaded bytes
	nextID   int
	seq      int64 // server-side change sequence, doubles as pull watermark
	pushes   int   // number of /items/batch calls served
}

type remoteRecord struct {
	models.RemoteItem
	serverSeq int64
}

// New starts the fake service on an ephemeral port. Callers own the returned
// server and must Close it.
func New() *Server {
	s := &Server{
		rejects:  make(map[string]string),
		items:    make(map[string]*remoteRecord),
		byRemote: make(map[string]string),
		images:   make(map[string][]byte),
	}

	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Post("/items/batch", s.handlePushBatch)
	r.Post("/items/{remoteID}/image", s.handleUploadImage)
	r.Delete("/items/{remoteID}", s.handleDeleteItem)
	r.Get("/items", s.handlePull)
	r.Get("/images/{remoteID}", s.handleFetchImage)

	s.httpServer = httptest.NewServer(r)
	return s
}

// URL returns the base URL clients should point at.
func (s *Server) URL() string { return s.httpServer.URL }

// Close shuts the fake service down.
func (s *Server) Close() { s.httpServer.Close() }

// SetOffline makes every endpoint answer 503, simulating an unreachable
// service without tearing the listener down.
func (s *Server) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = offline
}

// RejectClientID makes pushes of the given client id fail permanently with
// the supplied validation code.
func (s *Server) RejectClientID(clientID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejects[clientID] = code
}

// Seed installs a server-side item version directly, bypassing the push
// endpoint. Missing remote ids are assigned.
func (s *Server) Seed(item models.RemoteItem) models.RemoteItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.RemoteID == "" {
		item.RemoteID = s.newRemoteIDLocked()
	}
	s.seq++
	s.items[item.ClientID] = &remoteRecord{RemoteItem: item, serverSeq: s.seq}
	s.byRemote[item.RemoteID] = item.ClientID
	return item
}

// Item returns the server's current version of a client id.
func (s *Server) Item(clientID string) (models.RemoteItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[clientID]
	if !ok {
		return models.RemoteItem{}, false
	}
	return rec.RemoteItem, true
}

// ItemCount returns how many live items the server holds.
func (s *Server) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, rec := range s.items {
		if !rec.Deleted {
			n++
		}
	}
	return n
}

// PushCalls reports how many batch pushes have been served.
func (s *Server) PushCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushes
}

// Image returns the bytes uploaded for a remote id.
func (s *Server) Image(remoteID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.images[remoteID]
	return data, ok
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.unavailable(w) {
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handlePushBatch(w http.ResponseWriter, r *http.Request) {
	if s.unavailable(w) {
		return
	}

	var req models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.pushes++
	resp := models.PushResponse{Results: make([]models.PushResult, 0, len(req.Items))}
	for _, item := range req.Items {
		resp.Results = append(resp.Results, s.applyPushLocked(item))
	}
	s.mu.Unlock()

	writeJSON(w, resp)
}

// applyPushLocked implements the server contract: first-write wins on
// identity (a retried push of a known client id is an update, not a duplicate
// create) and last-write-wins on lastModified for updates.
func (s *Server) applyPushLocked(item models.PushItem) models.PushResult {
	if code, rejected := s.rejects[item.ClientID]; rejected {
		return models.PushResult{ClientID: item.ClientID, Reject: code}
	}

	existing, known := s.items[item.ClientID]
	if known && existing.LastModified > item.LastModified && !existing.Deleted {
		// Server holds a strictly newer version: conflict, return it.
		conflict := existing.RemoteItem
		return models.PushResult{
			ClientID: item.ClientID,
			RemoteID: existing.RemoteID,
			Accepted: false,
			Conflict: &conflict,
		}
	}

	remoteID := item.RemoteID
	if known {
		remoteID = existing.RemoteID
	} else if remoteID == "" {
		remoteID = s.newRemoteIDLocked()
	}

	s.seq++
	s.items[item.ClientID] = &remoteRecord{
		RemoteItem: models.RemoteItem{
			ClientID:     item.ClientID,
			RemoteID:     remoteID,
			LastModified: item.LastModified,
			Payload:      item.Payload,
		},
		serverSeq: s.seq,
	}
	s.byRemote[remoteID] = item.ClientID

	return models.PushResult{ClientID: item.ClientID, RemoteID: remoteID, Accepted: true}
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if s.unavailable(w) {
		return
	}

	remoteID := chi.URLParam(r, "remoteID")
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	clientID, known := s.byRemote[remoteID]
	if !known {
		s.mu.Unlock()
		http.Error(w, "unknown remote id", http.StatusUnprocessableEntity)
		return
	}
	s.images[remoteID] = data
	url := s.httpServer.URL + "/images/" + remoteID
	if rec, ok := s.items[clientID]; ok {
		rec.Payload.ImageURL = url
	}
	s.mu.Unlock()

	writeJSON(w, models.ImageUploadResponse{URL: url})
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if s.unavailable(w) {
		return
	}

	remoteID := chi.URLParam(r, "remoteID")

	s.mu.Lock()
	if clientID, ok := s.byRemote[remoteID]; ok {
		if rec, live := s.items[clientID]; live {
			s.seq++
			rec.Deleted = true
			rec.serverSeq = s.seq
		}
		delete(s.images, remoteID)
	}
	s.mu.Unlock()

	// Idempotent by contract: unknown ids are a success too.
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	if s.unavailable(w) {
		return
	}

	var since int64
	fmt.Sscanf(r.URL.Query().Get("modified_since"), "%d", &since)

	s.mu.Lock()
	resp := models.PullResponse{Watermark: s.seq}
	for _, rec := range s.items {
		if rec.serverSeq > since {
			resp.Items = append(resp.Items, rec.RemoteItem)
		}
	}
	s.mu.Unlock()

	writeJSON(w, resp)
}

func (s *Server) handleFetchImage(w http.ResponseWriter, r *http.Request) {
	if s.unavailable(w) {
		return
	}

	s.mu.Lock()
	data, ok := s.images[chi.URLParam(r, "remoteID")]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "no image", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

func (s *Server) unavailable(w http.ResponseWriter) bool {
	s.mu.Lock()
	offline := s.offline
	s.mu.Unlock()

	if offline {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}
	return offline
}

func (s *Server) newRemoteIDLocked() string {
	s.nextID++
	return fmt.Sprintf("srv-%d", s.nextID)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
