package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborline/shipdocs/internal/model"
	"github.com/harborline/shipdocs/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for document processing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		env := &serveEnv{
			store: st,
			process: func(ctx context.Context, paths []string) (*model.Document, error) {
				return processPaths(ctx, paths, cfg.LLM.PerField)
			},
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: env.mux(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type serveEnv struct {
	store   store.Store
	process func(ctx context.Context, paths []string) (*model.Document, error)
}

func (e *serveEnv) mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /process-documents", e.handleProcess)
	mux.HandleFunc("GET /documents", e.handleList)
	mux.HandleFunc("GET /documents/{id}", e.handleGet)
	mux.HandleFunc("PATCH /documents/{id}", e.handlePatch)
	mux.HandleFunc("DELETE /documents/{id}", e.handleDelete)

	return mux
}

// handleProcess accepts multipart file uploads, runs the extraction pipeline,
// and persists the result.
func (e *serveEnv) handleProcess(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form upload")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	tmpDir, err := os.MkdirTemp("", "shipdocs-upload-")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "upload staging failed")
		return
	}
	defer os.RemoveAll(tmpDir)

	var paths []string
	for _, fh := range files {
		path, err := stageUpload(tmpDir, fh)
		if err != nil {
			zap.L().Error("staging upload failed", zap.String("file", fh.Filename), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "upload staging failed")
			return
		}
		paths = append(paths, path)
	}

	doc, err := e.process(r.Context(), paths)
	if err != nil {
		zap.L().Error("processing failed", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "document processing failed")
		return
	}

	if err := e.store.SaveDocument(r.Context(), doc); err != nil {
		zap.L().Error("saving document failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "saving document failed")
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (e *serveEnv) handleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	docs, err := e.store.ListDocuments(r.Context(), store.DocumentFilter{Limit: limit, Offset: offset})
	if err != nil {
		zap.L().Error("listing documents failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "listing documents failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs, "count": len(docs)})
}

func (e *serveEnv) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := e.store.GetDocument(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		zap.L().Error("fetching document failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "fetching document failed")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (e *serveEnv) handlePatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value any    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Field == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"field\": ..., \"value\": ...}")
		return
	}

	id := r.PathValue("id")
	err := e.store.UpdateDocumentField(r.Context(), id, req.Field, req.Value)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		zap.L().Error("updating document failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "updating document failed")
		return
	}

	doc, err := e.store.GetDocument(r.Context(), id)
	if err != nil {
		zap.L().Error("fetching updated document failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "fetching updated document failed")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (e *serveEnv) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := e.store.DeleteDocument(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		zap.L().Error("deleting document failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "deleting document failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func stageUpload(dir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", eris.Wrapf(err, "open upload %s", fh.Filename)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, filepath.Base(fh.Filename)))
	if err != nil {
		return "", eris.Wrap(err, "create staging file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", eris.Wrapf(err, "stage upload %s", fh.Filename)
	}
	return dst.Name(), nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
