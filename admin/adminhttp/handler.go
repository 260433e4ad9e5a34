package adminhttp

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/karupanerura/named-cache/admin"
)

// CacheList is the body of GET /caches.
type CacheList struct {
	Caches []string `json:"caches"`
}

// ItemList is the body of GET /caches/{name}/items.
type ItemList struct {
	Cache string   `json:"cache"`
	Items []string `json:"items"`
}

type handler struct {
	reg *admin.Registry
	log *slog.Logger
}

// NewHandler returns an http.Handler serving the operations of reg:
//
//	GET    /caches
//	GET    /caches/{name}/items
//	DELETE /caches/{name}
//	DELETE /caches/{name}/items?key=KEY
//	POST   /caches/{name}/items/refresh?key=KEY
//	POST   /caches/{name}/refresh
//
// Successful mutations answer 204 No Content. Failures answer an ErrorResponse.
func NewHandler(reg *admin.Registry, opts ...Option) http.Handler {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}
	options.complete()

	h := &handler{
		reg: reg,
		log: options.log.With(slog.String("component", "adminhttp")),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /caches", h.listCaches)
	mux.HandleFunc("GET /caches/{name}/items", h.listItems)
	mux.HandleFunc("DELETE /caches/{name}", h.clearCache)
	mux.HandleFunc("DELETE /caches/{name}/items", h.clearItem)
	mux.HandleFunc("POST /caches/{name}/items/refresh", h.refreshItem)
	mux.HandleFunc("POST /caches/{name}/refresh", h.refreshCache)
	return mux
}

func (h *handler) listCaches(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, CacheList{Caches: h.reg.CacheNames()})
}

func (h *handler) listItems(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	keys, err := h.reg.ItemKeys(name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ItemList{Cache: name, Items: keys})
}

func (h *handler) clearCache(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.reg.ClearCache(r.PathValue("name")))
}

func (h *handler) clearItem(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.reg.ClearCacheItem(r.PathValue("name"), r.URL.Query().Get("key")))
}

func (h *handler) refreshItem(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.reg.RefreshItem(r.Context(), r.PathValue("name"), r.URL.Query().Get("key")))
}

func (h *handler) refreshCache(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.reg.RefreshCache(r.Context(), r.PathValue("name")))
}

func (h *handler) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("admin request failed", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	} else {
		h.log.Info("admin request rejected", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.String("reason", body.Error))
	}
	h.writeJSON(w, status, body)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("failed to write response", slog.Any("error", err))
	}
}
