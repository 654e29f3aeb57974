package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"catalog-matcher/internal/config"
	"catalog-matcher/internal/fileio"
	"catalog-matcher/internal/match/model"
	"catalog-matcher/internal/match/service"
	"catalog-matcher/internal/store"
)

type response struct {
	Stats model.Stats   `json:"stats"`
	Opts  model.Options `json:"opts"`
}

// Reconcile accepts a multipart upload of input records (JSON feed or a
// CSV/XLSX/XLS sheet) and reconciles it against the catalog. Form fields:
// user_id, header_row, category_threshold, brand_threshold, dry_run.
func Reconcile(cfg config.Config, logger zerolog.Logger, st store.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log := logger
		if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
			log = logger.With().Str("req_id", reqID).Logger()
		}
		defer r.Body.Close()

		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		records, err := fileio.ReadRecords(file, header.Filename, atoi(r.FormValue("header_row"), 1))
		if err != nil {
			http.Error(w, "failed to read records: "+err.Error(), http.StatusBadRequest)
			return
		}

		opt := model.Options{
			UserID:            toInt64(r.FormValue("user_id"), cfg.DefaultUserID),
			CategoryThreshold: toFloat(r.FormValue("category_threshold"), cfg.CategoryThreshold),
			BrandThreshold:    toFloat(r.FormValue("brand_threshold"), cfg.BrandThreshold),
			DryRun:            toBool(r.FormValue("dry_run"), false),
		}.WithDefaults()

		runner := service.NewRunner(st, opt, log)
		stats, err := runner.Run(r.Context(), records)
		if err != nil {
			log.Error().Err(err).Msg("run aborted")
			http.Error(w, "run aborted: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response{Stats: stats, Opts: opt}); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}

		log.Info().
			Int("records", len(records)).
			Int("matched", stats.Matched).
			Int("not_found", stats.NotFound).
			Dur("elapsed", time.Since(start)).
			Msg("reconcile done")
	}
}
