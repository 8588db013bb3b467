package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/status"
	"github.com/crewrelief/crewrelief/internal/domain"
)

// AdminHandler handles /admin/* repair endpoints. Requires X-Crewrelief-Admin-Secret.
type AdminHandler struct {
	cleanup *status.CleanupDuplicates
	log     zerolog.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(cleanup *status.CleanupDuplicates, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{cleanup: cleanup, log: log}
}

// Cleanup handles POST /admin/users/{id}/cleanup: remove duplicate
// assignments and repair the profile status. Returns { "deleted", "currentStatus", "statusRepaired" }.
func (h *AdminHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(chi.URLParam(r, "id"))
	res, err := h.cleanup.Reconcile(r.Context(), userID)
	if res == nil {
		writeDomainErr(w, h.log, err)
		return
	}
	body := map[string]interface{}{
		"deleted":        res.Deleted,
		"currentStatus":  string(res.Status),
		"statusRepaired": res.StatusRepaired,
	}
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", userID.String()).Msg("admin cleanup partially failed")
		body["warnings"] = []string{err.Error()}
	}
	AuditLog(h.log, r, "admin.cleanup", userID.String(), err == nil, "")
	writeJSON(w, http.StatusOK, body)
}

// Dedupe handles POST /admin/users/{id}/assignments/{kind}/dedupe?keepNewest=true.
// Without keepNewest every record of the kind is deleted.
func (h *AdminHandler) Dedupe(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(chi.URLParam(r, "id"))
	kind := domain.AssignmentKind(chi.URLParam(r, "kind"))
	if kind != domain.KindShip && kind != domain.KindLand {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "kind must be ship or land")
		return
	}
	keepNewest := true
	if v := r.URL.Query().Get("keepNewest"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "keepNewest must be a boolean")
			return
		}
		keepNewest = b
	}
	n, err := h.cleanup.DeleteAllExcept(r.Context(), userID, kind, keepNewest)
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	AuditLog(h.log, r, "admin.dedupe", userID.String(), true, "")
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": n, "keptNewest": keepNewest})
}
