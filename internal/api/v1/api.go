// Package v1 implements the native REST API.
package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mamamia96/moviemosaic/internal/feed"
	"github.com/mamamia96/moviemosaic/internal/task"
)

// UserChecker probes whether a username has a feed.
type UserChecker interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// Server is the v1 API server.
type Server struct {
	tasks   *task.Store
	results *task.ResultStore
	users   UserChecker
	log     *slog.Logger
}

// New creates a new v1 API server.
func New(db *sql.DB, users UserChecker, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		tasks:   task.NewStore(db),
		results: task.NewResultStore(db),
		users:   users,
		log:     log,
	}
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/tasks", s.createTask)
	mux.HandleFunc("GET /api/v1/tasks/{id}", s.getTask)
	mux.HandleFunc("GET /api/v1/tasks/{id}/result", s.getResult)
	mux.HandleFunc("GET /api/v1/users/{username}", s.checkUser)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

type taskResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Mode      int       `json:"mode"`
	Status    string    `json:"status"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTaskResponse(t *task.Task) taskResponse {
	return taskResponse{
		ID:        t.ID,
		Username:  t.User,
		Mode:      int(t.Mode),
		Status:    string(t.Status),
		ErrorMsg:  t.ErrorMsg,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type createTaskRequest struct {
	Username string `json:"username"`
	Mode     int    `json:"mode"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "missing_username", "username is required")
		return
	}
	mode := feed.Mode(req.Mode)
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_mode", "mode must be 0 or 1")
		return
	}

	t := &task.Task{User: req.Username, Mode: mode}
	if err := s.tasks.Add(t); err != nil {
		s.log.Error("create task failed", "user", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "db_error", "failed to create task")
		return
	}

	s.log.Info("task submitted", "task_id", t.ID, "user", t.User, "mode", int(t.Mode))
	writeJSON(w, http.StatusCreated, toTaskResponse(t))
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid task id")
		return
	}

	t, err := s.tasks.Get(id)
	if errors.Is(err, task.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "task not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", "failed to load task")
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

func (s *Server) getResult(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid task id")
		return
	}

	res, err := s.results.Get(id)
	if errors.Is(err, task.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "no result for task")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", "failed to load result")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Image)
}

type userResponse struct {
	Username string `json:"username"`
	Exists   bool   `json:"exists"`
}

func (s *Server) checkUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	exists, err := s.users.Exists(r.Context(), username)
	if err != nil {
		s.log.Error("user check failed", "user", username, "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "failed to check feed")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Username: username, Exists: exists})
}
