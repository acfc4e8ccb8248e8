package gateway

import (
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	StorefrontURL string
	// StaticDir holds the built frontend; unknown paths fall back to its
	// index.html so client-side routes survive a reload.
	StaticDir string
}

type Gateway struct {
	config Config
	client HTTPClient
}

// Connection-level headers that must not be forwarded in either direction.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func NewGateway(config Config, client HTTPClient) *Gateway {
	if config.StaticDir == "" {
		config.StaticDir = "./frontend"
	}
	config.StorefrontURL = strings.TrimRight(config.StorefrontURL, "/")
	return &Gateway{
		config: config,
		client: client,
	}
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "healthy",
		"service": "api-gateway",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request) {
	// EscapedPath keeps %2F, %3F and %23 encoded on the way upstream.
	path := r.URL.EscapedPath()
	target := g.config.StorefrontURL + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	log.Printf("[gateway] %s %s -> %s", r.Method, path, target)

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		log.Printf("[gateway] build request: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to build upstream request")
		return
	}
	req.ContentLength = r.ContentLength

	for k, v := range r.Header {
		req.Header[k] = v
	}
	for _, h := range hopHeaders {
		req.Header.Del(h)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		if prior := r.Header.Get("X-Forwarded-For"); prior != "" {
			host = prior + ", " + host
		}
		req.Header.Set("X-Forwarded-For", host)
	}
	if req.Header.Get("X-Forwarded-Host") == "" {
		req.Header.Set("X-Forwarded-Host", r.Host)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("[gateway] upstream %s failed: %v", g.config.StorefrontURL, err)
		writeError(w, http.StatusBadGateway, "storefront unavailable")
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	for _, h := range hopHeaders {
		w.Header().Del(h)
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("[gateway] copy response: %v", err)
	}
}

// ServeFrontend serves files from the static directory and answers any
// other path with index.html.
func (g *Gateway) ServeFrontend(w http.ResponseWriter, r *http.Request) {
	root := g.config.StaticDir
	name := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		http.ServeFile(w, r, name)
		return
	}
	http.ServeFile(w, r, filepath.Join(root, "index.html"))
}

func (g *Gateway) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")
	r.PathPrefix("/api/").HandlerFunc(g.ProxyRequest)
	r.PathPrefix("/uploads/").HandlerFunc(g.ProxyRequest).Methods("GET", "HEAD")
	r.HandleFunc("/metrics", g.ProxyRequest).Methods("GET")
	r.PathPrefix("/").HandlerFunc(g.ServeFrontend).Methods("GET", "HEAD")
	return r
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
