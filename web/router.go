/* router.go
 * Contains the chi router and the gateway handlers. Every handler makes at most one call through the API facade
 */

package web

import (
	"net/http"
	"strconv"
	"time"

	"numerai-bot/api/api"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the gateway routes over a
func NewRouter(a *api.API) http.Handler {
	s := &Server{api: a}
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Get("/leaderboard", s.getLeaderboard)
	r.Get("/competition/current", s.getCurrentCompetition)
	r.Route("/users/{username}", func(ur chi.Router) {
		ur.Get("/", s.getUser)
		ur.Get("/earnings", s.getEarnings)
		ur.Get("/scores", s.getScores)
	})
	r.Route("/archive", func(ar chi.Router) {
		ar.Get("/competitions/{competitionID}", s.getArchivedCompetition)
		ar.Get("/users/{username}", s.getArchivedUserEarnings)
	})

	return r
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	competition, status, err := s.api.Leaderboard(r.Context(), limit)
	respondUpstream(w, status, err, competition)
}

func (s *Server) getCurrentCompetition(w http.ResponseWriter, r *http.Request) {
	current, status, err := s.api.CurrentCompetition(r.Context())
	respondUpstream(w, status, err, current)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	lookup, status, err := s.api.LookupUser(r.Context(), username)
	if err == nil && status == http.StatusOK && !lookup.Found() {
		respondWithJSON(w, http.StatusNotFound, Envelope{
			UpstreamStatus: &status,
			Error:          "user " + username + " is not on the current leaderboard",
			Suggestions:    lookup.Suggestions,
		})
		return
	}

	var data any
	if lookup != nil {
		data = lookup.Summary
	}
	respondUpstream(w, status, err, data)
}

func (s *Server) getEarnings(w http.ResponseWriter, r *http.Request) {
	earnings, status, err := s.api.EarningsPerRound(r.Context(), chi.URLParam(r, "username"))
	respondUpstream(w, status, err, earnings)
}

func (s *Server) getScores(w http.ResponseWriter, r *http.Request) {
	scores, status, err := s.api.Scores(r.Context(), chi.URLParam(r, "username"))
	respondUpstream(w, status, err, scores)
}

func (s *Server) getArchivedCompetition(w http.ResponseWriter, r *http.Request) {
	competition, err := s.api.ArchivedCompetition(r.Context(), chi.URLParam(r, "competitionID"))
	respondArchive(w, err, competition)
}

func (s *Server) getArchivedUserEarnings(w http.ResponseWriter, r *http.Request) {
	record, err := s.api.ArchivedUserEarnings(r.Context(), chi.URLParam(r, "username"))
	respondArchive(w, err, record)
}
