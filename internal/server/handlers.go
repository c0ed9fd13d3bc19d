package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kintreehq/kintree/pkg/errors"
	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/photos"
	"github.com/kintreehq/kintree/pkg/render"
)

// maxUploadBytes bounds one multipart photo batch.
const maxUploadBytes = 64 << 20

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps the error taxonomy onto HTTP statuses. Every error body
// is {"error": "..."} with a human-readable message.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeValidation, errors.ErrCodeInvalidRole:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	}
	respondJSON(w, status, map[string]string{"error": errors.UserMessage(err)})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeValidation, err, "invalid request body")
	}
	return nil
}

// --- tree ---

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if data, ok, _ := s.cache.Get(ctx, cacheKeyTree); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	g, err := s.family.Tree(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := json.Marshal(g)
	if err != nil {
		respondError(w, err)
		return
	}
	_ = s.cache.Set(ctx, cacheKeyTree, data, s.cacheTTL)
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if data, ok, _ := s.cache.Get(ctx, cacheKeyLayout); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	l, err := s.computeLayout(r)
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := json.Marshal(l)
	if err != nil {
		respondError(w, err)
		return
	}
	_ = s.cache.Set(ctx, cacheKeyLayout, data, s.cacheTTL)
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleGetSVG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if data, ok, _ := s.cache.Get(ctx, cacheKeySVG); ok {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(data)
		return
	}

	l, err := s.computeLayout(r)
	if err != nil {
		respondError(w, err)
		return
	}
	svg, err := render.RenderSVG(render.ToDOT(l, render.Options{}))
	if err != nil {
		respondError(w, err)
		return
	}
	_ = s.cache.Set(ctx, cacheKeySVG, svg, s.cacheTTL)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *Server) computeLayout(r *http.Request) (*layout.Layout, error) {
	g, err := s.family.Tree(r.Context())
	if err != nil {
		return nil, err
	}
	l, err := s.engine.Layout(g)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// --- persons ---

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var fields family.PersonFields
	if err := decode(r, &fields); err != nil {
		respondError(w, err)
		return
	}
	p, err := s.family.CreatePerson(r.Context(), fields)
	if err != nil {
		respondError(w, err)
		return
	}
	s.invalidate(r.Context())
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	var upd family.PersonUpdate
	if err := decode(r, &upd); err != nil {
		respondError(w, err)
		return
	}
	p, err := s.family.UpdatePerson(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		respondError(w, err)
		return
	}
	s.invalidate(r.Context())
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := s.family.DeletePerson(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	s.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteness(w http.ResponseWriter, r *http.Request) {
	c, err := s.family.Completeness(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleListCouples(w http.ResponseWriter, r *http.Request) {
	ms, err := s.family.ListCouplesForPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ms)
}

// --- couples and edges ---

type createCoupleRequest struct {
	AnchorPersonID string      `json:"anchor_person_id"`
	Role           family.Role `json:"role"`
}

func (s *Server) handleCreateCouple(w http.ResponseWriter, r *http.Request) {
	var req createCoupleRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}
	c, err := s.family.CreateCouple(r.Context(), req.AnchorPersonID, req.Role)
	if err != nil {
		respondError(w, err)
		return
	}
	s.invalidate(r.Context())
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCouple(w http.ResponseWriter, r *http.Request) {
	if err := s.family.DeleteCouple(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	s.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type linkMemberRequest struct {
	PersonID string      `json:"person_id"`
	Role     family.Role `json:"role"`

	// Fields, when present, creates the person and links in one flow.
	Fields *family.PersonFields `json:"fields,omitempty"`
}

func (s *Server) handleLinkMember(w http.ResponseWriter, r *http.Request) {
	var req linkMemberRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}
	coupleID := chi.URLParam(r, "id")
	ctx := r.Context()

	if req.Fields != nil {
		p, err := s.family.CreatePersonAndLink(ctx, coupleID, req.Role, *req.Fields)
		if err != nil {
			respondError(w, err)
			return
		}
		s.invalidate(ctx)
		respondJSON(w, http.StatusCreated, p)
		return
	}

	if err := s.family.LinkPersonToCouple(ctx, req.PersonID, coupleID, req.Role); err != nil {
		respondError(w, err)
		return
	}
	s.invalidate(ctx)
	w.WriteHeader(http.StatusNoContent)
}

type flipEdgeRequest struct {
	PersonID string `json:"person_id"`
	CoupleID string `json:"couple_id"`
}

func (s *Server) handleFlipEdge(w http.ResponseWriter, r *http.Request) {
	var req flipEdgeRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.PersonID == "" || req.CoupleID == "" {
		respondError(w, errors.New(errors.ErrCodeValidation, "person_id and couple_id are required"))
		return
	}
	if err := s.family.FlipEdge(r.Context(), req.PersonID, req.CoupleID); err != nil {
		respondError(w, err)
		return
	}
	s.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// --- photos ---

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	ph, err := s.photos.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ph)
}

// handleUploadPhotos accepts a multipart batch: one or more "photos" files
// plus shared metadata fields. Per-file failures do not fail the batch; the
// aggregate result reports both counts.
func (s *Server) handleUploadPhotos(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, errors.Wrap(errors.ErrCodeValidation, err, "invalid multipart body"))
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		respondError(w, errors.New(errors.ErrCodeValidation, "no photos in request"))
		return
	}

	var uploads []photos.Upload
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			respondError(w, errors.Wrap(errors.ErrCodeValidation, err, "open upload %s", fh.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(w, errors.Wrap(errors.ErrCodeValidation, err, "read upload %s", fh.Filename))
			return
		}
		uploads = append(uploads, photos.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	fields := photos.Fields{
		Caption:   r.FormValue("caption"),
		Location:  r.FormValue("location"),
		Date:      r.FormValue("date"),
		Comments:  r.FormValue("comments"),
		PersonIDs: r.MultipartForm.Value["person_ids"],
	}

	res, err := s.photos.UploadBatch(r.Context(), uploads, fields)
	if err != nil {
		respondError(w, err)
		return
	}
	s.invalidate(r.Context())
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := s.photos.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	s.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
