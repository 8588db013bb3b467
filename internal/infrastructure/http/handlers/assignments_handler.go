package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/application/profile"
	"github.com/crewrelief/crewrelief/internal/application/status"
	"github.com/crewrelief/crewrelief/internal/domain"
	"github.com/crewrelief/crewrelief/internal/infrastructure/http/middleware"
)

// AssignmentsHandler saves assignments. Saving a ship record puts the caller
// on ship, saving a land record puts them on land.
type AssignmentsHandler struct {
	list     *profile.GetAssignments
	change   *status.ChangeStatus
	enqueuer ports.TaskEnqueuer
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAssignmentsHandler(list *profile.GetAssignments, change *status.ChangeStatus, enqueuer ports.TaskEnqueuer, log zerolog.Logger) *AssignmentsHandler {
	return &AssignmentsHandler{list: list, change: change, enqueuer: enqueuer, validate: validator.New(), log: log}
}

func (h *AssignmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.list.Execute(r.Context(), middleware.CallerID(r.Context()))
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"currentStatus":  string(res.Status),
		"shipAssignment": toShipDTO(res.Ship),
		"landAssignment": toLandDTO(res.Land),
	})
}

type shipBody struct {
	// From is the status the client believed the caller had.
	From           string `json:"from" validate:"omitempty,oneof=onShip onLand"`
	ShipName       string `json:"shipName" validate:"max=200"`
	Rank           string `json:"rank" validate:"max=100"`
	Company        string `json:"company" validate:"max=200"`
	FleetType      string `json:"fleetType" validate:"max=100"`
	PortOfJoining  string `json:"portOfJoining" validate:"max=200"`
	ContractLength *int   `json:"contractLength" validate:"omitempty,min=1,max=36"`
	DateOfOnboard  Date   `json:"dateOfOnboard"`
	IsPublic       *bool  `json:"isPublic"`
}

func (h *AssignmentsHandler) SaveShip(w http.ResponseWriter, r *http.Request) {
	var body shipBody
	if !decodeBody(w, r, h.validate, &body) {
		return
	}
	caller := middleware.CallerID(r.Context())
	a := domain.NewShipAssignment(caller)
	a.ShipName = strings.TrimSpace(body.ShipName)
	a.Rank = strings.TrimSpace(body.Rank)
	a.Company = strings.TrimSpace(body.Company)
	a.FleetType = strings.TrimSpace(body.FleetType)
	a.PortOfJoining = strings.TrimSpace(body.PortOfJoining)
	a.DateOfOnboard = body.DateOfOnboard.Time
	if body.ContractLength != nil {
		a.ContractLengthMonths = *body.ContractLength
	}
	if body.IsPublic != nil {
		a.IsPublic = *body.IsPublic
	}
	h.changeStatus(w, r, status.ChangeStatusInput{
		CallerID: caller,
		From:     domain.Status(body.From),
		To:       domain.StatusOnShip,
		Ship:     a,
	})
}

type landBody struct {
	From                string `json:"from" validate:"omitempty,oneof=onShip onLand"`
	LastVessel          string `json:"lastVessel" validate:"max=200"`
	Company             string `json:"company" validate:"max=200"`
	FleetType           string `json:"fleetType" validate:"max=100"`
	DateHome            Date   `json:"dateHome"`
	ExpectedJoiningDate Date   `json:"expectedJoiningDate"`
	IsPublic            *bool  `json:"isPublic"`
}

func (h *AssignmentsHandler) SaveLand(w http.ResponseWriter, r *http.Request) {
	var body landBody
	if !decodeBody(w, r, h.validate, &body) {
		return
	}
	caller := middleware.CallerID(r.Context())
	a := domain.NewLandAssignment(caller)
	a.LastVessel = strings.TrimSpace(body.LastVessel)
	a.Company = strings.TrimSpace(body.Company)
	a.FleetType = strings.TrimSpace(body.FleetType)
	a.DateHome = body.DateHome.Time
	a.ExpectedJoiningDate = body.ExpectedJoiningDate.Time
	if body.IsPublic != nil {
		a.IsPublic = *body.IsPublic
	}
	h.changeStatus(w, r, status.ChangeStatusInput{
		CallerID: caller,
		From:     domain.Status(body.From),
		To:       domain.StatusOnLand,
		Land:     a,
	})
}

func (h *AssignmentsHandler) changeStatus(w http.ResponseWriter, r *http.Request, input status.ChangeStatusInput) {
	res, err := h.change.Execute(r.Context(), input)
	if err != nil {
		AuditEmit(h.log, r, h.enqueuer, "status.changed", input.CallerID.String(), false, err.Error())
		writeDomainErr(w, h.log, err)
		return
	}
	AuditEmit(h.log, r, h.enqueuer, "status.changed", input.CallerID.String(), true, "")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":        toProfileDTO(res.Profile),
		"shipAssignment": toShipDTO(res.Ship),
		"landAssignment": toLandDTO(res.Land),
		"deleted":        res.Deleted,
		"warnings":       warningsOf(res.Warnings),
	})
}
