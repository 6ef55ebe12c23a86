package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/dmitrijs2005/snapnote/internal/server/collector"
	"github.com/dmitrijs2005/snapnote/internal/server/subscriptions"
)

type pingResponse struct {
	OK   bool   `json:"ok"`
	Time string `json:"time"`
}

type publicKeyResponse struct {
	Key string `json:"key"`
}

type uploadResponse struct {
	OK        bool `json:"ok"`
	Duplicate bool `json:"duplicate"`
}

type syncedRequest struct {
	Count *int `json:"count"`
}

type syncedResponse struct {
	OK        bool `json:"ok"`
	Attempted int  `json:"attempted"`
	Delivered int  `json:"delivered"`
	Pruned    int  `json:"pruned"`
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pingResponse{OK: true, Time: s.now().UTC().Format(time.RFC3339)})
}

func (s *Server) publicKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, publicKeyResponse{Key: s.opts.PublicKey})
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	var sub subscriptions.Subscription
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes)).Decode(&sub); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := s.subscriptions.Upsert(r.Context(), sub); err != nil {
		if errors.Is(err, common.ErrInvalidSubscription) {
			writeError(w, http.StatusBadRequest, "Missing subscription.endpoint")
			return
		}
		s.logger.Error(r.Context(), "failed to save subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save subscription")
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) uploadNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "Upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	id := r.FormValue(common.FieldID)
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing id")
		return
	}

	createdAt, err := strconv.ParseInt(r.FormValue(common.FieldCreatedAt), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid createdAt")
		return
	}

	file, header, err := r.FormFile(common.FieldImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing image")
		return
	}
	file.Close()

	dup, err := s.notes.Accept(r.Context(), collector.Upload{
		ID:        id,
		CreatedAt: createdAt,
		Text:      r.FormValue(common.FieldText),
		ImageSize: header.Size,
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidNote) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error(r.Context(), "failed to accept note", "note_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to accept note")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{OK: true, Duplicate: dup})
}

func (s *Server) syncCompleted(w http.ResponseWriter, r *http.Request) {
	var req syncedRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	count := 0
	if req.Count != nil {
		count = *req.Count
	}
	if count < 0 {
		writeError(w, http.StatusBadRequest, "Invalid count")
		return
	}

	// the reporting device may hang up; pruning must still see every outcome
	ctx := context.WithoutCancel(r.Context())

	rep, err := s.notifier.Dispatch(ctx, count)
	if err != nil {
		if errors.Is(err, common.ErrMissingCredentials) {
			s.logger.Error(ctx, "sync notification refused", "error", err)
			writeError(w, http.StatusInternalServerError, "Missing VAPID keys")
			return
		}
		s.logger.Error(ctx, "sync notification failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Notification failed")
		return
	}

	writeJSON(w, http.StatusOK, syncedResponse{OK: true, Attempted: rep.Attempted, Delivered: rep.Delivered, Pruned: rep.Pruned})
}
