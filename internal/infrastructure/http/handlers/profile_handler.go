package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/account"
	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/application/profile"
	"github.com/crewrelief/crewrelief/internal/domain"
	"github.com/crewrelief/crewrelief/internal/infrastructure/http/middleware"
)

// ProfileHandler serves the caller's own profile and other users' public views.
type ProfileHandler struct {
	get      *profile.GetProfile
	update   *profile.UpdateProfile
	view     *profile.ViewProfile
	del      *account.DeleteAccount
	enqueuer ports.TaskEnqueuer
	validate *validator.Validate
	log      zerolog.Logger
}

func NewProfileHandler(get *profile.GetProfile, update *profile.UpdateProfile, view *profile.ViewProfile, del *account.DeleteAccount,
	enqueuer ports.TaskEnqueuer, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		get:      get,
		update:   update,
		view:     view,
		del:      del,
		enqueuer: enqueuer,
		validate: validator.New(),
		log:      log,
	}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.get.Execute(r.Context(), middleware.CallerID(r.Context()))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

type profilePatchBody struct {
	Name              *string `json:"name" validate:"omitempty,max=100"`
	Surname           *string `json:"surname" validate:"omitempty,max=100"`
	MobileNumber      *string `json:"mobileNumber" validate:"omitempty,max=32"`
	Company           *string `json:"company" validate:"omitempty,max=200"`
	FleetWorking      *string `json:"fleetWorking" validate:"omitempty,max=100"`
	PresentRank       *string `json:"presentRank" validate:"omitempty,max=100"`
	CurrentStatus     *string `json:"currentStatus"`
	IsProfileVisible  *bool   `json:"isProfileVisible"`
	ShowEmailToOthers *bool   `json:"showEmailToOthers"`
	ShowPhoneToOthers *bool   `json:"showPhoneToOthers"`
	PhotoURL          *string `json:"photoURL" validate:"omitempty,url,max=2048"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body profilePatchBody
	if !decodeBody(w, r, h.validate, &body) {
		return
	}
	patch := ports.ProfilePatch{
		Name:              body.Name,
		Surname:           body.Surname,
		MobileNumber:      body.MobileNumber,
		Company:           body.Company,
		FleetType:         body.FleetWorking,
		Rank:              body.PresentRank,
		IsProfileVisible:  body.IsProfileVisible,
		ShowEmailToOthers: body.ShowEmailToOthers,
		ShowPhoneToOthers: body.ShowPhoneToOthers,
		PhotoURL:          body.PhotoURL,
	}
	if body.CurrentStatus != nil {
		s := domain.Status(*body.CurrentStatus)
		patch.Status = &s
	}
	res, err := h.update.Execute(r.Context(), profile.UpdateProfileInput{CallerID: middleware.CallerID(r.Context()), Patch: patch})
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":  toProfileDTO(res.Profile),
		"warnings": warningsOf(res.Warnings),
	})
}

// Delete handles DELETE /profile: the whole account goes, not just the profile document.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	res, err := h.del.Execute(r.Context(), account.DeleteAccountInput{Claims: claims})
	if err != nil {
		AuditEmit(h.log, r, h.enqueuer, "account.deleted", claims.UserID, false, err.Error())
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.enqueuer, "account.deleted", claims.UserID, true, "")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assignmentsDeleted": res.AssignmentsDeleted,
		"warnings":           warningsOf(res.Warnings),
	})
}

// View handles GET /profiles/{id}.
func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	m, err := h.view.Execute(r.Context(), profile.ViewProfileInput{
		ViewerID: middleware.CallerID(r.Context()),
		TargetID: domain.UserID(chi.URLParam(r, "id")),
	})
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchDTO(*m))
}
