package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"toyshop/toy"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Options configures the HTTP surface.
type Options struct {
	PublicDir   string   // static assets and the SPA entry point
	CORSOrigins []string // origins allowed to call with credentials
	OpenAPI     []byte   // served at /api/openapi.json when not empty
}

// RegisterHandlers wires the toy API and the static/SPA fallback onto router.
func RegisterHandlers(router *mux.Router, svc toy.Service, log Logger, opts Options) {
	h := NewToyHandler(svc, log)

	router.Use(LogRequests(log))

	apiRouter := router.PathPrefix("/api").Subrouter()
	// A trailing slash is accepted on every route, without a redirect.
	for _, slash := range []string{"", "/"} {
		apiRouter.HandleFunc("/toy"+slash, h.QueryToys).Methods(http.MethodGet)
		apiRouter.HandleFunc("/toy"+slash, h.AddToy).Methods(http.MethodPost)
		apiRouter.HandleFunc("/toy"+slash, h.UpdateToy).Methods(http.MethodPut)
		apiRouter.HandleFunc("/toy/{toyId}"+slash, h.GetToy).Methods(http.MethodGet)
		apiRouter.HandleFunc("/toy/{toyId}"+slash, h.RemoveToy).Methods(http.MethodDelete)
	}
	if len(opts.OpenAPI) > 0 {
		doc := opts.OpenAPI
		apiRouter.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write(doc)
		}).Methods(http.MethodGet)
	}

	// Fallback
	router.PathPrefix("/").Handler(spaHandler{root: opts.PublicDir}).Methods(http.MethodGet, http.MethodHead)
}

// NewHandler builds the complete handler: router, fallback and CORS.
func NewHandler(svc toy.Service, log Logger, opts Options) http.Handler {
	router := mux.NewRouter()
	RegisterHandlers(router, svc, log, opts)

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}

// spaHandler serves files from root and index.html for every other path,
// leaving client-side routes to the single-page app.
type spaHandler struct {
	root string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := filepath.Join(h.root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	if serveFile(w, r, name) {
		return
	}
	if serveFile(w, r, filepath.Join(h.root, "index.html")) {
		return
	}
	http.NotFound(w, r)
}

// serveFile writes name if it is a regular file and reports whether it did.
// http.ServeFile is avoided because it redirects ".../index.html" requests.
func serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}
