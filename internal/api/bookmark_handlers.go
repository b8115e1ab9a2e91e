package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/psisco/zakladki/internal/database"
	"github.com/psisco/zakladki/internal/models"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200

	maxURLLength         = 2048
	maxTitleLength       = 500
	maxDescriptionLength = 2000
)

func validateBookmarkURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("url is required")
	}
	if len(raw) > maxURLLength {
		return fmt.Errorf("url must be at most %d characters", maxURLLength)
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("url must be a well-formed absolute http(s) URL")
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("title must be at most %d characters", maxTitleLength)
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > maxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", maxDescriptionLength)
	}
	return nil
}

// freeTierCapReached reports whether user may not add another bookmark.
// Premium accounts are never capped.
func (s *Server) freeTierCapReached(r *http.Request, user *models.User) (bool, error) {
	if user.AccountType != models.AccountTypeFree {
		return false, nil
	}
	count, err := s.store.CountBookmarks(r.Context(), user.ID)
	if err != nil {
		return false, err
	}
	return count >= s.config.Limits.FreeBookmarks, nil
}

type BookmarkListResponse struct {
	Bookmarks  []models.Bookmark `json:"bookmarks"`
	TotalCount int               `json:"total_count"`
	HasMore    bool              `json:"has_more"`
}

// @Summary      List bookmarks
// @Description  Returns a page of the authenticated user's bookmarks, newest first.
// @Tags         bookmarks
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size, 1-200"  default(50)
// @Param        offset  query     int  false  "Rows to skip"      default(0)
// @Success      200     {object}  BookmarkListResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      422     {object}  ErrorResponse "Invalid pagination parameters"
// @Router       /bookmarks/ [get]
func (s *Server) ListBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	limit := defaultPageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxPageLimit {
			respondError(w, http.StatusUnprocessableEntity, "limit must be between 1 and 200")
			return
		}
		limit = parsed
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusUnprocessableEntity, "offset must be non-negative")
			return
		}
		offset = parsed
	}

	bookmarks, err := s.store.ListBookmarks(r.Context(), user.ID, limit, offset)
	if err != nil {
		log.Printf("ERROR: Failed to list bookmarks for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to list bookmarks")
		return
	}

	totalCount, err := s.store.CountBookmarks(r.Context(), user.ID)
	if err != nil {
		log.Printf("ERROR: Failed to count bookmarks for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to list bookmarks")
		return
	}

	respondJSON(w, http.StatusOK, BookmarkListResponse{
		Bookmarks:  bookmarks,
		TotalCount: totalCount,
		HasMore:    offset+limit < totalCount,
	})
}

type CreateBookmarkRequest struct {
	URL         string  `json:"url" example:"https://example.com"`
	Title       string  `json:"title" example:"Example"`
	Description *string `json:"description,omitempty"`
	AccessLevel string  `json:"access_level,omitempty" example:"private"`
}

// @Summary      Create a bookmark
// @Description  Creates a bookmark owned by the authenticated user. Free accounts are limited to a fixed number of bookmarks.
// @Tags         bookmarks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookmark  body      CreateBookmarkRequest  true  "Bookmark data"
// @Success      201       {object}  models.Bookmark
// @Failure      400       {object}  ErrorResponse "Bookmark limit exceeded for free account"
// @Failure      401       {object}  ErrorResponse
// @Failure      422       {object}  ErrorResponse "Validation failure"
// @Router       /bookmarks/ [post]
func (s *Server) CreateBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req CreateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	if err := validateBookmarkURL(req.URL); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateTitle(req.Title); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	if req.AccessLevel != "" && !models.ValidAccessLevel(req.AccessLevel) {
		respondError(w, http.StatusUnprocessableEntity, "access_level must be 'private' or 'public'")
		return
	}

	capReached, err := s.freeTierCapReached(r, user)
	if err != nil {
		log.Printf("ERROR: Failed to check bookmark count for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to create bookmark")
		return
	}
	if capReached {
		respondError(w, http.StatusBadRequest, "Bookmark limit exceeded for free account")
		return
	}

	bookmark, err := s.store.CreateBookmark(r.Context(), database.CreateBookmarkParams{
		ID:          uuid.New(),
		OwnerID:     user.ID,
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		AccessLevel: req.AccessLevel,
	})
	if err != nil {
		log.Printf("ERROR: Failed to create bookmark for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to create bookmark")
		return
	}

	respondJSON(w, http.StatusCreated, bookmark)
}

type UpdateBookmarkRequest struct {
	URL         *string `json:"url,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	AccessLevel *string `json:"access_level,omitempty"`
}

// @Summary      Update a bookmark
// @Description  Applies a partial update: only the supplied fields change, but sync_version advances on every accepted update.
// @Tags         bookmarks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookmarkId  path      string                 true  "Bookmark ID"
// @Param        bookmark    body      UpdateBookmarkRequest  true  "Fields to update"
// @Success      200         {object}  models.Bookmark
// @Failure      401         {object}  ErrorResponse
// @Failure      404         {object}  ErrorResponse "Bookmark not found"
// @Failure      422         {object}  ErrorResponse "Validation failure"
// @Router       /bookmarks/{bookmarkId} [put]
func (s *Server) UpdateBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	bookmarkID, err := uuid.Parse(chi.URLParam(r, "bookmarkId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Bookmark not found")
		return
	}

	var req UpdateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	if req.URL != nil {
		if err := validateBookmarkURL(*req.URL); err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	if req.Status != nil && !models.ValidBookmarkStatus(*req.Status) {
		respondError(w, http.StatusUnprocessableEntity, "status must be 'active' or 'archived'")
		return
	}
	if req.AccessLevel != nil && !models.ValidAccessLevel(*req.AccessLevel) {
		respondError(w, http.StatusUnprocessableEntity, "access_level must be 'private' or 'public'")
		return
	}

	bookmark, err := s.store.UpdateBookmark(r.Context(), bookmarkID, user.ID, database.UpdateBookmarkParams{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AccessLevel: req.AccessLevel,
	})
	if err != nil {
		log.Printf("ERROR: Failed to update bookmark %s: %v", bookmarkID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update bookmark")
		return
	}
	if bookmark == nil {
		respondError(w, http.StatusNotFound, "Bookmark not found")
		return
	}

	respondJSON(w, http.StatusOK, bookmark)
}

type DeleteBookmarkResponse struct {
	Success bool `json:"success"`
}

// @Summary      Delete a bookmark
// @Description  Permanently deletes a bookmark owned by the authenticated user.
// @Tags         bookmarks
// @Produce      json
// @Security     BearerAuth
// @Param        bookmarkId  path      string  true  "Bookmark ID"
// @Success      200         {object}  DeleteBookmarkResponse
// @Failure      401         {object}  ErrorResponse
// @Failure      404         {object}  ErrorResponse "Bookmark not found"
// @Router       /bookmarks/{bookmarkId} [delete]
func (s *Server) DeleteBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	bookmarkID, err := uuid.Parse(chi.URLParam(r, "bookmarkId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Bookmark not found")
		return
	}

	deleted, err := s.store.DeleteBookmark(r.Context(), bookmarkID, user.ID)
	if err != nil {
		log.Printf("ERROR: Failed to delete bookmark %s: %v", bookmarkID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete bookmark")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "Bookmark not found")
		return
	}

	respondJSON(w, http.StatusOK, DeleteBookmarkResponse{Success: true})
}

type SyncResponse struct {
	Bookmarks     []models.Bookmark `json:"bookmarks"`
	ServerVersion int64             `json:"server_version"`
	SyncTimestamp time.Time         `json:"sync_timestamp"`
}

// @Summary      Fetch changed bookmarks
// @Description  Returns the bookmarks touched since the supplied cursors, ordered by updated_at ascending, plus the owner's current maximum sync_version.
// @Tags         bookmarks
// @Produce      json
// @Security     BearerAuth
// @Param        since_timestamp  query     string  false  "RFC 3339 timestamp; only bookmarks updated strictly after it are returned"
// @Param        since_version    query     int     false  "Only bookmarks with a strictly greater sync_version are returned"
// @Success      200              {object}  SyncResponse
// @Failure      401              {object}  ErrorResponse
// @Failure      422              {object}  ErrorResponse "Invalid cursor parameters"
// @Router       /bookmarks/sync [get]
func (s *Server) SyncBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var sinceTime *time.Time
	if raw := r.URL.Query().Get("since_timestamp"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "since_timestamp must be an RFC 3339 timestamp")
			return
		}
		sinceTime = &parsed
	}

	var sinceVersion *int64
	if raw := r.URL.Query().Get("since_version"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "since_version must be an integer")
			return
		}
		sinceVersion = &parsed
	}

	bookmarks, err := s.store.ListBookmarksSince(r.Context(), user.ID, sinceTime, sinceVersion)
	if err != nil {
		log.Printf("ERROR: Failed to run delta query for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch changes")
		return
	}

	serverVersion, err := s.store.GetMaxSyncVersion(r.Context(), user.ID)
	if err != nil {
		log.Printf("ERROR: Failed to read server version for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch changes")
		return
	}

	respondJSON(w, http.StatusOK, SyncResponse{
		Bookmarks:     bookmarks,
		ServerVersion: serverVersion,
		SyncTimestamp: time.Now().UTC(),
	})
}
