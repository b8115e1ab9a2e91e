package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/psisco/zakladki/internal/exports"
)

// exportLimit bounds how many rows an export reads. Large enough for
// any realistic collection; exports are not paginated.
const exportLimit = 10000

// @Summary      Export bookmarks
// @Description  Renders the user's full bookmark collection as a downloadable document.
// @Tags         export
// @Produce      json
// @Produce      html
// @Produce      text/csv
// @Security     BearerAuth
// @Param        format  path  string  true  "Export format"  Enums(json, html, csv)
// @Success      200     {string}  string "Content-typed attachment"
// @Failure      400     {object}  ErrorResponse "Unsupported export format"
// @Failure      401     {object}  ErrorResponse
// @Router       /export/{format} [get]
func (s *Server) ExportBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	format := chi.URLParam(r, "format")

	contentType, err := exports.ContentType(format)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unsupported export format")
		return
	}

	bookmarks, err := s.store.ListBookmarks(r.Context(), user.ID, exportLimit, 0)
	if err != nil {
		log.Printf("ERROR: Failed to load bookmarks for export, user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to export bookmarks")
		return
	}

	now := time.Now()
	body, err := exports.Render(format, bookmarks, now)
	if err != nil {
		log.Printf("ERROR: Failed to render %s export for user %s: %v", format, user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to export bookmarks")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exports.Filename(format, now)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
