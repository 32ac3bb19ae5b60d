package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"unspool/internal/config"
	"unspool/internal/logging"
	"unspool/internal/manifest"
	"unspool/internal/queue"
	"unspool/internal/title"
)

// maxUploadBytes caps upload request bodies at 32 GiB, enough for a full
// remuxed disc.
const maxUploadBytes = 32 << 30

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	srv.server = &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/titles", s.handleTitles)
	mux.HandleFunc("/api/titles/", s.handleTitleTracks)
	mux.HandleFunc("/api/queue", s.handleQueue)
	mux.Handle("/media/", http.StripPrefix("/media/", http.FileServer(http.Dir(s.daemon.cfg.Paths.OutputDir))))
	return mux
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type statusResponse struct {
	Running      bool   `json:"running"`
	QueueDBPath  string `json:"queue_db_path"`
	LockFilePath string `json:"lock_file_path"`
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, statusResponse{
		Running:      status.Running,
		QueueDBPath:  status.QueueDBPath,
		LockFilePath: status.LockFilePath,
	})
}

type uploadResponse struct {
	TitleID   string `json:"title_id"`
	Playlist  string `json:"playlist"`
	Artifacts int    `json:"artifacts"`
	Skipped   int    `json:"skipped"`
}

// handleUpload persists the uploaded container to the incoming directory and
// processes it synchronously. Pipeline failures surface as a generic 500; the
// cause lands in the daemon log and the queue row.
func (s *apiServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	sourcePath, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.logger.Error("upload persist failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	result, err := s.daemon.workflow.RunNow(r.Context(), sourcePath)
	if err != nil {
		s.logger.Error("upload processing failed",
			logging.Error(err),
			logging.String("source", sourcePath),
		)
		s.writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		TitleID:   result.TitleID,
		Playlist:  result.Playlist,
		Artifacts: len(result.Artifacts),
		Skipped:   result.Skipped,
	})
}

// saveUpload streams the upload into the incoming directory under a sanitized
// name, never trusting the client-supplied path.
func (s *apiServer) saveUpload(src io.Reader, clientName string) (string, error) {
	base := filepath.Base(clientName)
	ext := filepath.Ext(base)
	name := title.Slug(base)
	if name == "" {
		name = "upload"
	}

	dir := s.daemon.cfg.Paths.IncomingDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, name+ext)
	if _, err := os.Stat(dst); err == nil {
		dst = filepath.Join(dir, name+"-"+uuid.NewString()[:8]+ext)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

type titleView struct {
	ID       string `json:"id"`
	Playlist string `json:"playlist"`
}

type titlesResponse struct {
	Titles []titleView `json:"titles"`
}

func (s *apiServer) handleTitles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	titles, err := manifest.ListTitles(s.daemon.cfg.Paths.OutputDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]titleView, len(titles))
	for i, t := range titles {
		views[i] = titleView{ID: t.ID, Playlist: t.Playlist}
	}
	s.writeJSON(w, http.StatusOK, titlesResponse{Titles: views})
}

type tracksResponse struct {
	Subtitles []string `json:"subtitles"`
	Audio     []string `json:"audio"`
}

func (s *apiServer) handleTitleTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/titles/")
	id, tail, found := strings.Cut(rest, "/")
	if !found || tail != "tracks" || id == "" || strings.Contains(id, "..") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	titleDir := filepath.Join(s.daemon.cfg.Paths.OutputDir, id)
	if info, err := os.Stat(titleDir); err != nil || !info.IsDir() {
		s.writeError(w, http.StatusNotFound, "title not found")
		return
	}
	tracks, err := manifest.SiblingTracks(titleDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, tracksResponse{Subtitles: tracks.Subtitles, Audio: tracks.Audio})
}

type queueItemView struct {
	ID            int64  `json:"id"`
	TitleID       string `json:"title_id"`
	SourcePath    string `json:"source_path"`
	Status        string `json:"status"`
	ErrorMessage  string `json:"error_message,omitempty"`
	ArtifactCount int    `json:"artifact_count"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type queueResponse struct {
	Items []queueItemView `json:"items"`
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		status, ok := queue.ParseStatus(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", value))
			return
		}
		statuses = append(statuses, status)
	}

	items, err := s.daemon.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]queueItemView, len(items))
	for i, item := range items {
		views[i] = queueItemView{
			ID:            item.ID,
			TitleID:       item.TitleID,
			SourcePath:    item.SourcePath,
			Status:        string(item.Status),
			ErrorMessage:  item.ErrorMessage,
			ArtifactCount: item.ArtifactCount,
			CreatedAt:     item.CreatedAt.Format(time.RFC3339),
			UpdatedAt:     item.UpdatedAt.Format(time.RFC3339),
		}
	}
	s.writeJSON(w, http.StatusOK, queueResponse{Items: views})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response failed", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
