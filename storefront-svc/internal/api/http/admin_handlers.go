package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"street-bites/pkg/domain"
	"street-bites/storefront-svc/internal/metrics"
	"street-bites/storefront-svc/internal/validation"
)

const defaultCleanupDays = 7

func (h *Handler) upsertMenuItem(w http.ResponseWriter, r *http.Request) {
	var item domain.MenuItem
	if !decodeBody(w, r, &item) {
		return
	}
	saved, err := h.Catalog.UpsertMenuItem(r.Context(), item)
	if err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathVar(w, r, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteMenuItem(r.Context(), id); err != nil {
		writeError(w, err, true)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := pathVar(w, r, "category")
	if !ok {
		return
	}
	deleted, err := h.Catalog.DeleteCategory(r.Context(), category)
	if err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handler) getAllOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.Catalog.Offers(r.Context(), false)
	if err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (h *Handler) upsertOffer(w http.ResponseWriter, r *http.Request) {
	var offer domain.SpecialOffer
	if !decodeBody(w, r, &offer) {
		return
	}
	saved, err := h.Catalog.UpsertOffer(r.Context(), offer)
	if err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) deleteOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathVar(w, r, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteOffer(r.Context(), id); err != nil {
		writeError(w, err, true)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveLocation(w http.ResponseWriter, r *http.Request) {
	var loc domain.LocationData
	if !decodeBody(w, r, &loc) {
		return
	}
	saved, err := h.Catalog.SaveLocation(r.Context(), loc)
	if err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type cleanupRequest struct {
	Days *int `json:"days"`
}

func (h *Handler) cleanupOrders(w http.ResponseWriter, r *http.Request) {
	var body cleanupRequest
	if !decodeOptionalBody(w, r, &body) {
		return
	}
	days := defaultCleanupDays
	if body.Days != nil {
		days = *body.Days
	}
	deleted, err := h.Orders.Purge(r.Context(), days)
	if err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Reports.RecentOrders(r.Context())
	if err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getWeeklyCSV(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reports.Weekly(r.Context())
	if err != nil {
		writeError(w, err, true)
		return
	}

	var buf bytes.Buffer
	if err := h.Reports.WriteCSV(&buf, report); err != nil {
		writeError(w, err, true)
		return
	}

	filename := fmt.Sprintf("orders-report-%s.csv", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	tally, err := h.Stats.Day(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if h.opts.Limits != nil {
		if err := h.opts.Limits.Upload.Allow(r.Context(), ClientIP(r)); err != nil {
			metrics.RateLimited.WithLabelValues(h.opts.Limits.Upload.Policy).Inc()
			writeError(w, err, true)
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, validation.MaxUploadBytes+maxBodyBytes)
	if err := r.ParseMultipartForm(validation.MaxUploadBytes); err != nil {
		writeError(w, validation.Invalid("image", "must be at most 5 MB"), true)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, validation.Invalid("image", "is required"), true)
		return
	}
	defer file.Close()

	name, err := validation.Upload(header.Filename, header.Header.Get("Content-Type"), header.Size, h.now())
	if err != nil {
		writeError(w, err, true)
		return
	}

	if err := os.MkdirAll(h.opts.UploadDir, 0755); err != nil {
		log.Printf("[uploads] create dir: %v", err)
		writeMessage(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	dst, err := os.Create(filepath.Join(h.opts.UploadDir, name))
	if err != nil {
		log.Printf("[uploads] create %s: %v", name, err)
		writeMessage(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("[uploads] write %s: %v", name, err)
		writeMessage(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	log.Printf("[uploads] stored %s (%d bytes)", name, header.Size)
	writeJSON(w, http.StatusCreated, map[string]string{"url": "/uploads/" + name})
}

func (h *Handler) seedCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Seed(r.Context()); err != nil {
		writeError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}
