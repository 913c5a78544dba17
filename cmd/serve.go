package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-cli/internal/importer"
	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead import HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "serve: open store")
		}
		defer st.Close() //nolint:errcheck

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/import", handleImport(st))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// handleImport accepts a multipart lead file upload. With ?dry_run=1 it
// returns the parse preview without inserting; otherwise it submits the
// valid rows and returns the report. The optional "owner" form field names
// the importing user, who receives rows with no resolvable owner.
func handleImport(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseMultipartForm(cfg.Server.MaxUploadBytes); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close() //nolint:errcheck

		ext := strings.ToLower(filepath.Ext(header.Filename))
		switch ext {
		case ".csv", ".tsv", ".txt", ".xlsx":
		default:
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type %q", ext))
			return
		}

		refs, err := importer.LoadRefs(ctx, st)
		if err != nil {
			zap.L().Error("load reference tables", zap.Error(err))
			writeJSONError(w, http.StatusBadGateway, "reference tables unavailable")
			return
		}

		session := importer.NewSession(refs)
		if err := parseUpload(session, file, header.Filename); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		if r.URL.Query().Get("dry_run") == "1" {
			writeJSON(w, http.StatusOK, session.Preview(cfg.Import.PreviewRows))
			return
		}

		defaultOwnerID := ""
		if owner := r.FormValue("owner"); owner != "" {
			id := refs.ResolveOwner(owner)
			if id == nil {
				writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("owner %q is not an assignable user", owner))
				return
			}
			defaultOwnerID = *id
		}

		var limiter *rate.Limiter
		if rps := cfg.Import.InsertRPS; rps > 0 {
			limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
		sub := importer.NewSubmitter(st, cfg.Import.ChunkSize, limiter)
		report, submitErr := sub.Submit(ctx, session.Rows, defaultOwnerID)

		batch := model.ImportBatch{
			FileName: session.FileName,
			Total:    report.Total,
			Inserted: report.Inserted,
			Skipped:  report.Skipped,
			Outcome:  model.BatchOutcomeComplete,
		}
		if submitErr != nil {
			batch.Outcome = model.BatchOutcomePartial
		}
		if recErr := st.RecordImportBatch(ctx, batch); recErr != nil {
			zap.L().Warn("record import batch", zap.Error(recErr))
		}

		if submitErr != nil {
			zap.L().Error("import halted",
				zap.String("file", session.FileName),
				zap.Int("inserted_before_failure", report.Inserted),
				zap.Error(submitErr),
			)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":        "import halted on chunk failure",
				"inserted":     report.Inserted,
				"skipped":      report.Skipped,
				"failed_chunk": report.FailedChunk,
			})
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

// parseUpload spools the uploaded file to disk (tealeg needs a file path
// for XLSX) and parses it into the session.
func parseUpload(session *importer.Session, file io.Reader, name string) error {
	tmp, err := os.CreateTemp("", "lead-upload-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return eris.Wrap(err, "serve: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	defer tmp.Close()           //nolint:errcheck

	if _, err := io.Copy(tmp, file); err != nil {
		return eris.Wrap(err, "serve: spool upload")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "serve: close temp file")
	}

	if err := session.ParseFile(tmp.Name()); err != nil {
		return err
	}
	session.FileName = filepath.Base(name)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
