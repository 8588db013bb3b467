package repository

import (
	"encoding/json"
	"math"
	"time"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

// Wire field names. They match the documents written by the mobile clients,
// so renaming any of them breaks compatibility with existing data.
const (
	fieldName             = "name"
	fieldSurname          = "surname"
	fieldEmail            = "email"
	fieldMobileNumber     = "mobileNumber"
	fieldCompany          = "company"
	fieldFleetWorking     = "fleetWorking"
	fieldPresentRank      = "presentRank"
	fieldCurrentStatus    = "currentStatus"
	fieldIsProfileVisible = "isProfileVisible"
	fieldShowEmail        = "showEmailToOthers"
	fieldShowPhone        = "showPhoneToOthers"
	fieldPhotoURL         = "photoURL"
	fieldUserIdentifier   = "userIdentifier"
	fieldShipName         = "shipName"
	fieldRank             = "rank"
	fieldContractLength   = "contractLength"
	fieldPortOfJoining    = "portOfJoining"
	fieldIsPublic         = "isPublic"
	fieldFleetType        = "fleetType"
	fieldDateOfOnboard    = "dateOfOnboard"
	fieldLastVessel       = "lastVessel"
	fieldDateHome         = "dateHome"
	fieldExpectedJoining  = "expectedJoiningDate"
	fieldPasswordHash     = "passwordHash"
	fieldExpiresAt        = "expiresAt"
)

func profileToData(p *domain.UserProfile) map[string]any {
	status := p.Status
	if !status.Valid() {
		status = domain.StatusOnLand
	}
	return map[string]any{
		fieldName:             p.Name,
		fieldSurname:          p.Surname,
		fieldEmail:            p.Email,
		fieldMobileNumber:     p.MobileNumber,
		fieldCompany:          p.Company,
		fieldFleetWorking:     p.FleetType,
		fieldPresentRank:      p.Rank,
		fieldCurrentStatus:    string(status),
		fieldIsProfileVisible: p.IsProfileVisible,
		fieldShowEmail:        p.ShowEmailToOthers,
		fieldShowPhone:        p.ShowPhoneToOthers,
		fieldPhotoURL:         p.PhotoURL,
	}
}

func profileFromDocument(doc *ports.Document) *domain.UserProfile {
	m := doc.Data
	status, err := domain.ParseStatus(stringField(m, fieldCurrentStatus))
	if err != nil {
		status = domain.StatusOnLand
	}
	return &domain.UserProfile{
		ID:                domain.UserID(doc.ID),
		Name:              stringField(m, fieldName),
		Surname:           stringField(m, fieldSurname),
		Email:             stringField(m, fieldEmail),
		MobileNumber:      stringField(m, fieldMobileNumber),
		Company:           stringField(m, fieldCompany),
		FleetType:         stringField(m, fieldFleetWorking),
		Rank:              stringField(m, fieldPresentRank),
		Status:            status,
		IsProfileVisible:  boolField(m, fieldIsProfileVisible, true),
		ShowEmailToOthers: boolField(m, fieldShowEmail, true),
		ShowPhoneToOthers: boolField(m, fieldShowPhone, true),
		PhotoURL:          stringField(m, fieldPhotoURL),
		CreatedAt:         doc.CreateTime,
		UpdatedAt:         doc.UpdateTime,
	}
}

func patchToFields(patch ports.ProfilePatch) map[string]any {
	fields := map[string]any{}
	putString := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	putBool := func(key string, v *bool) {
		if v != nil {
			fields[key] = *v
		}
	}
	putString(fieldName, patch.Name)
	putString(fieldSurname, patch.Surname)
	putString(fieldMobileNumber, patch.MobileNumber)
	putString(fieldCompany, patch.Company)
	putString(fieldFleetWorking, patch.FleetType)
	putString(fieldPresentRank, patch.Rank)
	putString(fieldPhotoURL, patch.PhotoURL)
	putBool(fieldIsProfileVisible, patch.IsProfileVisible)
	putBool(fieldShowEmail, patch.ShowEmailToOthers)
	putBool(fieldShowPhone, patch.ShowPhoneToOthers)
	if patch.Status != nil {
		fields[fieldCurrentStatus] = string(*patch.Status)
	}
	return fields
}

func shipToData(a *domain.ShipAssignment) map[string]any {
	months := a.ContractLengthMonths
	if months <= 0 {
		months = domain.DefaultContractLengthMonths
	}
	m := map[string]any{
		fieldUserIdentifier: a.OwnerID.String(),
		fieldShipName:       a.ShipName,
		fieldRank:           a.Rank,
		fieldCompany:        a.Company,
		fieldContractLength: months,
		fieldPortOfJoining:  a.PortOfJoining,
		fieldEmail:          a.Email,
		fieldMobileNumber:   a.MobileNumber,
		fieldIsPublic:       a.IsPublic,
		fieldFleetType:      a.FleetType,
	}
	putTime(m, fieldDateOfOnboard, a.DateOfOnboard)
	return m
}

func shipFromDocument(doc *ports.Document) *domain.ShipAssignment {
	m := doc.Data
	return &domain.ShipAssignment{
		ID:                   doc.ID,
		OwnerID:              ownerOf(doc),
		ShipName:             stringField(m, fieldShipName),
		Company:              stringField(m, fieldCompany),
		FleetType:            stringField(m, fieldFleetType),
		PortOfJoining:        stringField(m, fieldPortOfJoining),
		Rank:                 stringField(m, fieldRank),
		Email:                stringField(m, fieldEmail),
		MobileNumber:         stringField(m, fieldMobileNumber),
		ContractLengthMonths: intField(m, fieldContractLength, domain.DefaultContractLengthMonths),
		DateOfOnboard:        timeField(m, fieldDateOfOnboard),
		IsPublic:             boolField(m, fieldIsPublic, true),
		CreatedAt:            doc.CreateTime,
	}
}

func landToData(a *domain.LandAssignment) map[string]any {
	m := map[string]any{
		fieldUserIdentifier: a.OwnerID.String(),
		fieldCompany:        a.Company,
		fieldFleetType:      a.FleetType,
		fieldLastVessel:     a.LastVessel,
		fieldIsPublic:       a.IsPublic,
		fieldEmail:          a.Email,
		fieldMobileNumber:   a.MobileNumber,
	}
	putTime(m, fieldDateHome, a.DateHome)
	putTime(m, fieldExpectedJoining, a.ExpectedJoiningDate)
	return m
}

func landFromDocument(doc *ports.Document) *domain.LandAssignment {
	m := doc.Data
	return &domain.LandAssignment{
		ID:                  doc.ID,
		OwnerID:             ownerOf(doc),
		LastVessel:          stringField(m, fieldLastVessel),
		Company:             stringField(m, fieldCompany),
		FleetType:           stringField(m, fieldFleetType),
		Email:               stringField(m, fieldEmail),
		MobileNumber:        stringField(m, fieldMobileNumber),
		DateHome:            timeField(m, fieldDateHome),
		ExpectedJoiningDate: timeField(m, fieldExpectedJoining),
		IsPublic:            boolField(m, fieldIsPublic, true),
		CreatedAt:           doc.CreateTime,
	}
}

// ownerOf prefers the userIdentifier field; old records keyed by user id may lack it.
func ownerOf(doc *ports.Document) domain.UserID {
	if id := stringField(doc.Data, fieldUserIdentifier); id != "" {
		return domain.UserID(id)
	}
	return domain.UserID(doc.ID)
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string, def bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return def
}

func numberField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func intField(m map[string]any, key string, def int) int {
	f, ok := numberField(m, key)
	if !ok || f <= 0 {
		return def
	}
	return int(f)
}

// timeField reads a Unix epoch seconds value; absent or invalid values give the zero time.
func timeField(m map[string]any, key string) time.Time {
	f, ok := numberField(m, key)
	if !ok {
		return time.Time{}
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

func putTime(m map[string]any, key string, t time.Time) {
	if t.IsZero() {
		return
	}
	m[key] = t.Unix()
}
