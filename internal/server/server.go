package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/PolarWolf314/dotenvpull/internal/configs"
	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	logger "github.com/PolarWolf314/dotenvpull/internal/logging"
	"github.com/PolarWolf314/dotenvpull/internal/secrets"
	"github.com/PolarWolf314/dotenvpull/internal/store"
	"github.com/PolarWolf314/dotenvpull/internal/utils"
)

const shutdownTimeout = 10 * time.Second

// Server answers the dotenvpull protocol on top of a Store.
type Server struct {
	store store.Store
	log   logger.Logger
	mux   *http.ServeMux
}

func New(st store.Store, log logger.Logger) *Server {
	s := &Server{
		store: st,
		log:   log,
		mux:   http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /push", s.handlePush)
	s.mux.HandleFunc("GET /pull", s.handlePull)
	s.mux.HandleFunc("PUT /update", s.handleUpdate)
	s.mux.HandleFunc("DELETE /delete", s.handleDelete)
	s.mux.HandleFunc("POST /share", s.handleShare)
	s.mux.HandleFunc("GET /share", s.handleGetShared)
	s.mux.HandleFunc("GET /ping", s.handlePing)

	return s
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.withRequestLog(s.mux)
}

// ListenAndServe listens on cfg.Addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, cfg configs.ServerConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg configs.ServerConfig) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.log.Infof("Listening on %s (store: %s)", ln.Addr(), s.store.Type())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var req PushRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := requireProjectID(req.ProjectID); err != nil {
		s.writeError(w, r, err)
		return
	}

	ciphertext, err := decodeContent(req.EncryptedContent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	accessKey, err := s.store.Create(r.Context(), req.ProjectID, ciphertext)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("push %q: %w", req.ProjectID, err))
		return
	}

	s.writeJSON(w, http.StatusOK, PushResponse{
		Message:   "Data stored successfully",
		AccessKey: accessKey,
	})
}

func (s *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	accessKey, err := requireHeader(r, HeaderAPIKey)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ciphertext, err := s.store.Read(r.Context(), accessKey)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("pull: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, ContentResponse{
		EncryptedContent: secrets.EncodeSealed(ciphertext),
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	accessKey, err := requireHeader(r, HeaderAPIKey)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req UpdateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ciphertext, err := decodeContent(req.EncryptedContent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.Update(r.Context(), accessKey, ciphertext); err != nil {
		s.writeError(w, r, fmt.Errorf("update: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, MessageResponse{Message: "Data updated successfully"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	accessKey, err := requireHeader(r, HeaderAPIKey)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.Delete(r.Context(), accessKey); err != nil {
		s.writeError(w, r, fmt.Errorf("delete: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, MessageResponse{Message: "Data deleted successfully"})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := requireProjectID(req.ProjectID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ShareCode == "" {
		s.writeError(w, r, fmt.Errorf("%w: share_code is required", kerrors.ErrBadRequest))
		return
	}

	ciphertext, err := decodeContent(req.EncryptedContent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.Publish(r.Context(), req.ProjectID, req.ShareCode, ciphertext); err != nil {
		s.writeError(w, r, fmt.Errorf("share %q: %w", req.ProjectID, err))
		return
	}

	s.writeJSON(w, http.StatusOK, MessageResponse{Message: "Data shared successfully"})
}

func (s *Server) handleGetShared(w http.ResponseWriter, r *http.Request) {
	shareCode, err := requireHeader(r, HeaderShareCode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	projectID, err := requireHeader(r, HeaderProjectID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ciphertext, err := s.store.Consume(r.Context(), projectID, shareCode)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("getshared %q: %w", projectID, err))
		return
	}

	s.writeJSON(w, http.StatusOK, ContentResponse{
		EncryptedContent: secrets.EncodeSealed(ciphertext),
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		// Health checks expect 503 from an unready server.
		s.log.Errorf("%s %s %s: %v", requestID(r.Context()), r.Method, r.URL.Path, err)
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Detail: kerrors.ErrStorageUnavailable.Error(),
			Code:   CodeStorageUnavailable,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, PingResponse{Status: "ok", Store: string(s.store.Type())})
}

func requireHeader(r *http.Request, name string) (string, error) {
	v := r.Header.Get(name)
	if v == "" {
		return "", fmt.Errorf("%w: missing %s header", kerrors.ErrBadRequest, name)
	}
	return v, nil
}

func requireProjectID(projectID string) error {
	if err := utils.ValidateProjectID(projectID); err != nil {
		return fmt.Errorf("%w: project_id: %v", kerrors.ErrBadRequest, err)
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("%w: request body: %v", kerrors.ErrEncoding, err)
	}
	return nil
}

func decodeContent(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, fmt.Errorf("%w: encrypted_content is required", kerrors.ErrBadRequest)
	}
	return secrets.DecodeSealed(encoded)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnf("failed to write response: %v", err)
	}
}

// writeError answers with {detail, code}. Server-side failures are logged in
// full and reported to the client by their class only.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	detail := err.Error()
	if status >= http.StatusInternalServerError {
		s.log.Errorf("%s %s %s: %v", requestID(r.Context()), r.Method, r.URL.Path, err)
		if code == CodeStorageUnavailable {
			detail = kerrors.ErrStorageUnavailable.Error()
		} else {
			detail = "internal server error"
		}
	}

	s.writeJSON(w, status, ErrorResponse{Detail: detail, Code: code})
}
