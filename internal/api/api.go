// Package api is the query API: list/read tenders and save user category
// preferences over the normalized store. Routing uses httprouter.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/co-za/tenders-ingest/internal/model"
	"github.com/co-za/tenders-ingest/internal/store"
)

// Server holds the store and builds the route table.
type Server struct {
	Store *store.Store
}

// Router returns the CORS-wrapped httprouter handler.
func (s *Server) Router() http.Handler {
	r := httprouter.New()
	r.GET("/tenders", s.listTenders)
	r.GET("/tenders/:id", s.getTender)
	r.GET("/tenders/:id/documents", s.getDocuments)
	r.GET("/tenders/:id/contacts", s.getContacts)
	r.POST("/user/preferences", s.savePreferences)

	r.HandleOPTIONS = true
	r.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCORSHeaders(w)
		w.WriteHeader(http.StatusNoContent)
	})

	return withCORS(r)
}

// withCORS attaches permissive CORS headers to every response.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCORSHeaders(w)
		next.ServeHTTP(w, r)
	})
}

func writeCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) listTenders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()

	f := store.ListFilter{
		Source:   q.Get("source"),
		Status:   q.Get("status"),
		Buyer:    q.Get("buyer"),
		Category: q.Get("category"),
		Q:        q.Get("q"),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
	}
	f.ClosingFrom = parseQueryTime(q.Get("closing_from"))
	f.ClosingTo = parseQueryTime(q.Get("closing_to"))
	f.PublishedFrom = parseQueryTime(q.Get("published_from"))
	f.PublishedTo = parseQueryTime(q.Get("published_to"))
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = v
	}
	f.Normalize()

	results, total, err := s.Store.ListTenders(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing tenders")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":   total,
		"limit":   f.Limit,
		"offset":  f.Offset,
		"results": results,
	})
}

func (s *Server) getTender(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	t, ok, err := s.Store.GetTender(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "fetching tender")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "tender not found")
		return
	}

	docs, err := s.Store.GetDocuments(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "fetching documents")
		return
	}
	contacts, err := s.Store.GetContacts(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "fetching contacts")
		return
	}

	writeJSON(w, http.StatusOK, model.Item{Tender: t, Documents: docs, Contacts: contacts})
}

func (s *Server) getDocuments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	docs, err := s.Store.GetDocuments(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "fetching documents")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) getContacts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	contacts, err := s.Store.GetContacts(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "fetching contacts")
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

type preferencesRequest struct {
	Email      string   `json:"email"`
	Categories []string `json:"categories"`
}

func (s *Server) savePreferences(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	_, ok, err := s.Store.SavePreferences(r.Context(), req.Email, req.Categories)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "saving preferences")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"email": req.Email, "categories": req.Categories})
}

func parseQueryTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
