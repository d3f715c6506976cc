package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/smileynet/contacts/internal/contact"
)

// NewRouter returns the HTTP handler for the contacts REST contract.
//
// Routes:
//
//	GET    /contacts       list, 200
//	POST   /contacts       create, 201
//	GET    /contacts/{id}  fetch one, 200 or 404
//	PUT    /contacts/{id}  replace, 200 or 404
//	DELETE /contacts/{id}  delete, 204 or 404
//
// Request bodies must be JSON. A body missing name or phone is rejected
// with 400.
func NewRouter(store Store, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &contactsHandler{store: store, log: logger}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/contacts", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	return r
}

type contactsHandler struct {
	store Store
	log   *zap.Logger
}

func (h *contactsHandler) list(w http.ResponseWriter, r *http.Request) {
	cs, err := h.store.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *contactsHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), pathID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *contactsHandler) create(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	c, err := h.store.Create(r.Context(), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *contactsHandler) update(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	c, err := h.store.Update(r.Context(), pathID(r), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *contactsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), pathID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps a store error to a status code.
func (h *contactsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "contact not found", http.StatusNotFound)
		return
	}
	h.log.Error("store failure",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// decodeDraft reads and validates a Draft body, writing a 400 on failure.
func decodeDraft(w http.ResponseWriter, r *http.Request) (contact.Draft, bool) {
	var d contact.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return contact.Draft{}, false
	}
	if err := d.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return contact.Draft{}, false
	}
	return d, true
}

// pathID returns the decoded {id} segment. chi matches on RawPath when the
// request carries one, and on the already decoded Path otherwise.
func pathID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id
	}
	if unescaped, err := url.PathUnescape(id); err == nil {
		return unescaped
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
