package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/psisco/zakladki/internal/database"
	"github.com/psisco/zakladki/internal/imports"
	"github.com/psisco/zakladki/internal/models"
)

type ImportRequest struct {
	Data string `json:"data" example:"data:text/csv;base64,VVJMLFRpdGxl"`
}

type ImportResponse struct {
	ImportedCount int      `json:"imported_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors"`
}

// @Summary      Import bookmarks
// @Description  Imports bookmarks from a JSON, HTML or CSV payload. Records are attempted independently; one bad record never aborts the batch.
// @Tags         import
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        format         path      string         true  "Import format"  Enums(json, html, csv)
// @Param        importRequest  body      ImportRequest  true  "Raw or base64 data-URL payload"
// @Success      200            {object}  ImportResponse
// @Failure      400            {object}  ErrorResponse "Unsupported format, malformed payload, or free-tier limit reached"
// @Failure      401            {object}  ErrorResponse
// @Router       /import/{format} [post]
func (s *Server) ImportBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	format := chi.URLParam(r, "format")

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	capReached, err := s.freeTierCapReached(r, user)
	if err != nil {
		log.Printf("ERROR: Failed to check bookmark count for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to import bookmarks")
		return
	}
	if capReached {
		respondError(w, http.StatusBadRequest, "Import limit exceeded for free account")
		return
	}

	results, err := imports.Parse(format, req.Data)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Import failed: %v", err))
		return
	}

	response := ImportResponse{Errors: []string{}}
	for _, result := range results {
		if result.Err != nil {
			response.FailedCount++
			response.Errors = append(response.Errors, result.Err.Error())
			continue
		}

		if err := s.importEntry(r, user, result.Entry); err != nil {
			response.FailedCount++
			response.Errors = append(response.Errors, fmt.Sprintf("failed to import bookmark %s: %v", result.Entry.Title, err))
			continue
		}
		response.ImportedCount++
	}

	respondJSON(w, http.StatusOK, response)
}

// importEntry validates and persists one parsed record, re-checking
// the free-tier cap so a large batch cannot blow past it.
func (s *Server) importEntry(r *http.Request, user *models.User, entry *imports.Entry) error {
	if err := validateBookmarkURL(entry.URL); err != nil {
		return err
	}
	if err := validateTitle(entry.Title); err != nil {
		return err
	}
	if entry.Description != nil {
		if err := validateDescription(*entry.Description); err != nil {
			return err
		}
	}
	if entry.AccessLevel != "" && !models.ValidAccessLevel(entry.AccessLevel) {
		return fmt.Errorf("access_level must be 'private' or 'public'")
	}

	capReached, err := s.freeTierCapReached(r, user)
	if err != nil {
		return err
	}
	if capReached {
		return fmt.Errorf("bookmark limit exceeded for free account")
	}

	_, err = s.store.CreateBookmark(r.Context(), database.CreateBookmarkParams{
		ID:          uuid.New(),
		OwnerID:     user.ID,
		URL:         entry.URL,
		Title:       entry.Title,
		Description: entry.Description,
		AccessLevel: entry.AccessLevel,
	})
	return err
}
