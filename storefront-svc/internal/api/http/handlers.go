package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"street-bites/pkg/domain"
	"street-bites/storefront-svc/internal/ratelimit"
	"street-bites/storefront-svc/internal/service"
)

const maxBodyBytes = 1 << 20

type Options struct {
	Limits       *ratelimit.Set
	UploadDir    string
	SecureCookie bool
}

type Handler struct {
	Orders  service.OrderServiceInterface
	Catalog service.CatalogServiceInterface
	Reports service.ReportServiceInterface
	Auth    service.AuthServiceInterface
	Stats   service.StatsServiceInterface

	opts Options
	now  func() time.Time
}

func NewHandler(orders service.OrderServiceInterface, catalog service.CatalogServiceInterface, reports service.ReportServiceInterface, auth service.AuthServiceInterface, stats service.StatsServiceInterface, opts Options) *Handler {
	if opts.UploadDir == "" {
		opts.UploadDir = "./uploads"
	}
	return &Handler{
		Orders:  orders,
		Catalog: catalog,
		Reports: reports,
		Auth:    auth,
		Stats:   stats,
		opts:    opts,
		now:     time.Now,
	}
}

// RegisterRoutes matches on the escaped path, so an encoded "/", "?" or "#"
// stays inside its segment; handlers read path values through pathVar.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.UseEncodedPath()
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	if h.opts.Limits != nil {
		api.Use(rateLimit(h.opts.Limits.General))
	}

	api.HandleFunc("/menu", h.getMenu).Methods("GET")
	api.HandleFunc("/offers", h.getOffers).Methods("GET")
	api.HandleFunc("/location", h.getLocation).Methods("GET")
	api.HandleFunc("/orders", h.getOrders).Methods("GET")
	api.HandleFunc("/orders", h.createOrder).Methods("POST")
	api.HandleFunc("/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")
	api.Handle("/orders/{id}/status", h.requireAdmin(http.HandlerFunc(h.setOrderStatus))).Methods("PUT")

	api.HandleFunc("/admin/auth", h.login).Methods("POST")
	api.HandleFunc("/admin/auth", h.logout).Methods("DELETE")
	api.HandleFunc("/admin/approve", h.approveLogin).Methods("GET")
	api.HandleFunc("/admin/reject", h.rejectLogin).Methods("GET")
	api.HandleFunc("/admin/verify", h.verifyLogin).Methods("POST")
	api.HandleFunc("/admin/status", h.loginStatus).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(h.requireAdmin)
	admin.HandleFunc("/menu", h.upsertMenuItem).Methods("POST")
	admin.HandleFunc("/menu/{id}", h.deleteMenuItem).Methods("DELETE")
	admin.HandleFunc("/categories/{category}", h.deleteCategory).Methods("DELETE")
	admin.HandleFunc("/offers", h.getAllOffers).Methods("GET")
	admin.HandleFunc("/offers", h.upsertOffer).Methods("POST")
	admin.HandleFunc("/offers/{id}", h.deleteOffer).Methods("DELETE")
	admin.HandleFunc("/location", h.saveLocation).Methods("PUT")
	admin.HandleFunc("/cleanup", h.cleanupOrders).Methods("POST")
	admin.HandleFunc("/reports", h.getReport).Methods("GET")
	admin.HandleFunc("/reports/weekly.csv", h.getWeeklyCSV).Methods("GET")
	admin.HandleFunc("/stats", h.getStats).Methods("GET")
	admin.HandleFunc("/upload", h.uploadImage).Methods("POST")
	admin.HandleFunc("/seed", h.seedCatalog).Methods("POST")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "storefront-svc",
		"timestamp": h.now().Format(time.RFC3339),
	})
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Menu(r.Context())
	if err != nil {
		writeError(w, err, false)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.Catalog.Offers(r.Context(), true)
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (h *Handler) getLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := h.Catalog.Location(r.Context())
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListActive(r.Context(), r.URL.Query().Get("deviceId"))
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.PlaceOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	order, err := h.Orders.Place(r.Context(), ClientIP(r), req)
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathVar(w, r, "id")
	if !ok {
		return
	}
	png, err := h.Orders.PickupQR(r.Context(), id)
	if err != nil {
		writeError(w, err, false)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

type statusUpdate struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathVar(w, r, "id")
	if !ok {
		return
	}
	var body statusUpdate
	if !decodeBody(w, r, &body) {
		return
	}
	order, err := h.Orders.SetStatus(r.Context(), id, body.Status)
	if err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// decodeBody reads a JSON request body, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// decodeOptionalBody is decodeBody for endpoints whose body may be absent,
// including chunked requests that turn out empty.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func pathVar(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value, err := url.PathUnescape(mux.Vars(r)[name])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid "+name)
		return "", false
	}
	return value, true
}
