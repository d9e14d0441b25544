package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hszk-dev/vidhub/internal/api/middleware"
	"github.com/hszk-dev/vidhub/internal/domain/model"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
	"github.com/hszk-dev/vidhub/internal/usecase"
)

// DefaultMaxUploadBytes bounds a publish or update request body.
const DefaultMaxUploadBytes int64 = 512 << 20

// multipartMemory is the part of a multipart body held in memory; the rest spills to temp files.
const multipartMemory = 32 << 20

// Request/Response types

type listVideosQuery struct {
	Page     string `validate:"omitempty,number"`
	Limit    string `validate:"omitempty,number"`
	Query    string `validate:"max=255"`
	SortBy   string `validate:"omitempty,oneof=createdAt updatedAt title"`
	SortType string `validate:"omitempty,oneof=asc desc"`
	UserID   string `validate:"omitempty,uuid"`
}

type OwnerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

type VideoResponse struct {
	ID           string         `json:"id"`
	OwnerID      string         `json:"owner_id"`
	Owner        *OwnerResponse `json:"owner,omitempty"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	VideoURL     string         `json:"video_url"`
	ThumbnailURL string         `json:"thumbnail_url"`
	IsPublished  bool           `json:"is_published"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

type ListVideosResponse struct {
	Videos []VideoResponse `json:"videos"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// VideoHandler handles video-related HTTP requests.
type VideoHandler struct {
	svc            usecase.VideoService
	validate       *validator.Validate
	maxUploadBytes int64
}

// NewVideoHandler creates a new VideoHandler.
// A non-positive maxUploadBytes selects DefaultMaxUploadBytes.
func NewVideoHandler(svc usecase.VideoService, maxUploadBytes int64) *VideoHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &VideoHandler{
		svc:            svc,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes mounts the video endpoints. Mutations go through requireAuth.
func (h *VideoHandler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/videos", h.List)
	r.Get("/videos/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/videos", h.Publish)
		r.Patch("/videos/{id}", h.Update)
		r.Delete("/videos/{id}", h.Delete)
		r.Patch("/videos/{id}/publish", h.TogglePublish)
	})
}

// List handles GET /v1/videos
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := listVideosQuery{
		Page:     q.Get("page"),
		Limit:    q.Get("limit"),
		Query:    q.Get("query"),
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
		UserID:   q.Get("userId"),
	}
	if err := h.validate.Struct(params); err != nil {
		Error(w, http.StatusBadRequest, "invalid_query", validationMessage(err))
		return
	}

	criteria, err := params.toCriteria()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	videos, err := h.svc.ListVideos(r.Context(), criteria)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := ListVideosResponse{
		Videos: make([]VideoResponse, 0, len(videos)),
		Page:   criteria.Page,
		Limit:  criteria.Limit,
	}
	for _, v := range videos {
		resp.Videos = append(resp.Videos, toVideoWithOwnerResponse(v))
	}

	JSON(w, http.StatusOK, resp)
}

// Publish handles POST /v1/videos
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r, true) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	videoAsset, closeVideo, err := formAsset(r, "video", model.AssetKindVideo)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Unreadable video file")
		return
	}
	defer closeVideo()

	thumbnail, closeThumbnail, err := formAsset(r, "thumbnail", model.AssetKindThumbnail)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Unreadable thumbnail file")
		return
	}
	defer closeThumbnail()

	video, err := h.svc.PublishVideo(r.Context(), usecase.PublishVideoInput{
		CallerID:    middleware.CallerID(r.Context()),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Video:       videoAsset,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusCreated, toVideoResponse(video))
}

// Get handles GET /v1/videos/{id}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}

	video, err := h.svc.GetVideo(r.Context(), videoID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toVideoWithOwnerResponse(video))
}

// Update handles PATCH /v1/videos/{id}
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}
	if !h.parseForm(w, r, false) {
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	thumbnail, closeThumbnail, err := formAsset(r, "thumbnail", model.AssetKindThumbnail)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Unreadable thumbnail file")
		return
	}
	defer closeThumbnail()

	video, err := h.svc.UpdateVideo(r.Context(), usecase.UpdateVideoInput{
		VideoID:     videoID,
		CallerID:    middleware.CallerID(r.Context()),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Thumbnail:   thumbnail,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toVideoResponse(video))
}

// Delete handles DELETE /v1/videos/{id}
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteVideo(r.Context(), videoID, middleware.CallerID(r.Context())); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// TogglePublish handles PATCH /v1/videos/{id}/publish
func (h *VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDParam(w, r)
	if !ok {
		return
	}

	video, err := h.svc.TogglePublish(r.Context(), videoID, middleware.CallerID(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toVideoResponse(video))
}

// parseForm reads the request body capped at maxUploadBytes. Publish requires
// multipart/form-data; update also accepts a urlencoded body without files.
// It writes the error response and returns false on failure.
func (h *VideoHandler) parseForm(w http.ResponseWriter, r *http.Request, requireMultipart bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || (errors.Is(err, http.ErrNotMultipart) && !requireMultipart) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		Error(w, http.StatusBadRequest, "payload_too_large",
			"Request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
		return false
	}
	Error(w, http.StatusBadRequest, "invalid_request", "Body must be multipart/form-data")
	return false
}

// formAsset opens the named file part. A missing part yields a nil asset.
func formAsset(r *http.Request, field string, kind model.AssetKind) (*model.Asset, func(), error) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	return newAsset(kind, file, header), func() { _ = file.Close() }, nil
}

func newAsset(kind model.AssetKind, file multipart.File, header *multipart.FileHeader) *model.Asset {
	return &model.Asset{
		Kind:        kind,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

func videoIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	videoID, err := model.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return uuid.Nil, false
	}
	return videoID, true
}

func (q listVideosQuery) toCriteria() (model.ListCriteria, error) {
	criteria := model.ListCriteria{
		Search:        q.Query,
		SortField:     model.SortField(q.SortBy),
		SortDirection: model.SortDirection(q.SortType),
	}

	if q.Page != "" {
		page, err := strconv.Atoi(q.Page)
		if err != nil || page < 1 {
			return criteria, model.ErrInvalidPage
		}
		criteria.Page = page
	}
	if q.Limit != "" {
		limit, err := strconv.Atoi(q.Limit)
		if err != nil || limit < 1 {
			return criteria, model.ErrInvalidLimit
		}
		criteria.Limit = limit
	}
	if q.UserID != "" {
		ownerID, err := model.ParseID(q.UserID)
		if err != nil {
			return criteria, err
		}
		criteria.OwnerID = &ownerID
	}

	// Normalized here as well so the response can echo the effective page and limit.
	return criteria, criteria.Normalize()
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "Invalid value for " + verrs[0].Field()
	}
	return "Invalid query parameters"
}

func (h *VideoHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrVideoNotFound):
		Error(w, http.StatusNotFound, "video_not_found", "Video not found")
	case errors.Is(err, usecase.ErrUnauthenticated):
		Error(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
	case errors.Is(err, usecase.ErrForbidden):
		Error(w, http.StatusForbidden, "forbidden", "You do not own this video")
	case errors.Is(err, usecase.ErrAssetsRequired):
		Error(w, http.StatusBadRequest, "assets_required", "Video and thumbnail files are required")
	case errors.Is(err, model.ErrEmptyTitle), errors.Is(err, model.ErrTitleTooLong):
		Error(w, http.StatusBadRequest, "invalid_title", err.Error())
	case errors.Is(err, model.ErrEmptyDescription):
		Error(w, http.StatusBadRequest, "invalid_description", err.Error())
	case errors.Is(err, model.ErrInvalidIdentityRef):
		Error(w, http.StatusBadRequest, "invalid_user_id", "User ID must be a valid UUID")
	case errors.Is(err, model.ErrInvalidPage), errors.Is(err, model.ErrInvalidLimit),
		errors.Is(err, model.ErrInvalidSortField), errors.Is(err, model.ErrInvalidSortDirection):
		Error(w, http.StatusBadRequest, "invalid_query", err.Error())
	case errors.Is(err, usecase.ErrUploadFailed):
		slog.Error("asset upload failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		Error(w, http.StatusInternalServerError, "upload_failed", "Failed to store uploaded files")
	default:
		slog.Error("unexpected service error",
			"request_id", middleware.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func toVideoResponse(v *model.Video) VideoResponse {
	return VideoResponse{
		ID:           v.ID.String(),
		OwnerID:      v.OwnerID.String(),
		Title:        v.Title,
		Description:  v.Description,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		IsPublished:  v.IsPublished,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    v.UpdatedAt.Format(time.RFC3339),
	}
}

func toVideoWithOwnerResponse(v *model.VideoWithOwner) VideoResponse {
	resp := toVideoResponse(v.Video)
	resp.Owner = &OwnerResponse{
		ID:       v.Owner.ID.String(),
		Username: v.Owner.Username,
		Avatar:   v.Owner.Avatar,
	}
	return resp
}
