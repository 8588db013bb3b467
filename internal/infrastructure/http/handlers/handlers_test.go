package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/account"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	want := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{"calendar day", `"2024-07-01"`, want, false},
		{"rfc3339", `"2024-07-01T00:00:00Z"`, want, false},
		{"unix seconds", fmt.Sprint(want.Unix()), want, false},
		{"null", `null`, time.Time{}, false},
		{"garbage", `"first of july"`, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.in), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if !tt.wantErr && !d.Equal(tt.want) {
				t.Errorf("got %v, want %v", d.Time, tt.want)
			}
		})
	}
	out, _ := json.Marshal(Date{want})
	if string(out) != `"2024-07-01"` {
		t.Errorf("marshal = %s", out)
	}
}

func TestWriteDomainErr(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"unauthenticated", domerrors.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"profile missing", fmt.Errorf("load: %w", domerrors.ErrProfileNotFound), http.StatusNotFound, ErrCodeProfileNotFound},
		{"assignment missing", domerrors.ErrAssignmentNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"validation", domerrors.NewValidationError("dateOfOnboard", "required"), http.StatusBadRequest, ErrCodeInvalidRequest},
		{"save failed", fmt.Errorf("%w: %w", domerrors.ErrSaveFailed, domerrors.NewStoreError("set", "shipAssignments", fmt.Errorf("timeout"))), http.StatusBadGateway, ErrCodeSaveFailed},
		{"locked", &account.LockedError{RetryAfterSeconds: 30}, http.StatusTooManyRequests, ErrCodeAccountLocked},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainErr(rec, zerolog.Nop(), tt.err)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body map[string]string
			_ = json.NewDecoder(rec.Body).Decode(&body)
			if body["code"] != tt.wantErr {
				t.Errorf("code = %q, want %q", body["code"], tt.wantErr)
			}
		})
	}
	rec := httptest.NewRecorder()
	writeDomainErr(rec, zerolog.Nop(), &account.LockedError{RetryAfterSeconds: 30})
	if rec.Header().Get("Retry-After") != "30" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}
