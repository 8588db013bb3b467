package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/matching"
	"github.com/crewrelief/crewrelief/internal/infrastructure/http/middleware"
)

type MatchesHandler struct {
	find *matching.FindMatches
	log  zerolog.Logger
}

func NewMatchesHandler(find *matching.FindMatches, log zerolog.Logger) *MatchesHandler {
	return &MatchesHandler{find: find, log: log}
}

type windowDTO struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

type matchesResponse struct {
	Mode        string     `json:"mode"`
	Window      *windowDTO `json:"window,omitempty"`
	Matches     []matchDTO `json:"matches"`
	Dropped     int        `json:"dropped"`
	Generation  uint64     `json:"generation"`
	Superseded  bool       `json:"superseded"`
	GeneratedAt time.Time  `json:"generatedAt"`
}

func toMatchesResponse(res *matching.FindMatchesResult) matchesResponse {
	out := matchesResponse{
		Mode:        res.Mode,
		Matches:     make([]matchDTO, 0, len(res.Matches)),
		Dropped:     res.Dropped,
		Generation:  res.Generation,
		Superseded:  res.Superseded,
		GeneratedAt: res.GeneratedAt,
	}
	if res.Window != nil {
		out.Window = &windowDTO{From: Date{res.Window.From}, To: Date{res.Window.To}}
	}
	for _, m := range res.Matches {
		out.Matches = append(out.Matches, toMatchDTO(m))
	}
	return out
}

// Find handles GET /matches?company=&fleet=&date=YYYY-MM-DD&month=YYYY-MM&anyStatus=true.
func (h *MatchesHandler) Find(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := matching.Criteria{Company: q.Get("company"), Fleet: q.Get("fleet")}
	if v := q.Get("date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
			return
		}
		criteria.ExactDate = &t
	}
	if v := q.Get("month"); v != "" {
		t, err := time.Parse("2006-01", v)
		if err != nil {
			writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "month: want YYYY-MM")
			return
		}
		criteria.Month = &t
	}
	if v := q.Get("anyStatus"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "anyStatus must be a boolean")
			return
		}
		criteria.AnyStatus = b
	}
	res, err := h.find.Execute(r.Context(), matching.FindMatchesInput{SeekerID: middleware.CallerID(r.Context()), Criteria: criteria})
	if err != nil {
		writeDomainErr(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchesResponse(res))
}

// Latest handles GET /matches/latest: the newest committed search for the caller.
func (h *MatchesHandler) Latest(w http.ResponseWriter, r *http.Request) {
	res := h.find.Tracker().Latest(middleware.CallerID(r.Context()))
	if res == nil {
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, "no search has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, toMatchesResponse(res))
}
