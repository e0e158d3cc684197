package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/catalog"
	"classroom-tracker/internal/config"
	"classroom-tracker/internal/domain"
	"classroom-tracker/internal/service"
)

// ClassroomServer exposes the scoring engine over a JSON HTTP API.
type ClassroomServer struct {
	cfg        *config.Config
	scoring    *service.ScoringService
	roster     *service.RosterService
	hallOfFame *service.HallOfFameService
	registry   *catalog.Registry
	logger     zerolog.Logger
}

func NewClassroomServer(
	cfg *config.Config,
	scoring *service.ScoringService,
	roster *service.RosterService,
	hallOfFame *service.HallOfFameService,
	registry *catalog.Registry,
	logger zerolog.Logger,
) *ClassroomServer {
	return &ClassroomServer{
		cfg:        cfg,
		scoring:    scoring,
		roster:     roster,
		hallOfFame: hallOfFame,
		registry:   registry,
		logger:     logger,
	}
}

// Routes registers every API endpoint on a fresh mux.
func (s *ClassroomServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/verify-teacher", s.handleVerifyTeacher)
	mux.HandleFunc("GET /api/players", s.handleListPlayers)
	mux.HandleFunc("GET /api/player/{name}", s.handleGetPlayer)
	mux.HandleFunc("GET /api/history/{name}", s.handleGetHistory)
	mux.HandleFunc("GET /api/stats/{name}", s.handleGetStats)
	mux.HandleFunc("GET /api/periods/{name}", s.handleGetPeriods)
	mux.HandleFunc("GET /api/badges/{name}", s.handleGetPlayerBadges)
	mux.HandleFunc("GET /api/franchise/{name}", s.handleGetFranchiseStats)
	mux.HandleFunc("GET /api/franchise/{name}/badges", s.handleGetFranchiseBadges)
	mux.HandleFunc("GET /api/badge-catalog", s.handleBadgeCatalog)
	mux.HandleFunc("GET /api/hall-of-fame", s.handleHallOfFame)

	mux.HandleFunc("POST /api/add-points", s.handleAddPoints)
	mux.HandleFunc("DELETE /api/undo-last/{name}", s.handleUndoLast)
	mux.HandleFunc("POST /api/add-student", s.handleAddStudent)
	mux.HandleFunc("DELETE /api/remove-student/{name}", s.handleRemoveStudent)
	mux.HandleFunc("PUT /api/change-franchise", s.handleChangeFranchise)

	return mux
}

func (s *ClassroomServer) handleVerifyTeacher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, domain.ErrValidation)
		return
	}

	ok := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.TeacherPassword)) == 1
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

func (s *ClassroomServer) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.roster.ListPlayers(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, players)
}

func (s *ClassroomServer) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.roster.GetPlayer(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, player)
}

func (s *ClassroomServer) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.roster.GetHistory(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *ClassroomServer) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.roster.GetPlayerStats(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *ClassroomServer) handleGetPeriods(w http.ResponseWriter, r *http.Request) {
	stats, err := s.roster.GetPeriodStats(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *ClassroomServer) handleGetPlayerBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.roster.ListPlayerBadges(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, badges)
}

func (s *ClassroomServer) handleGetFranchiseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.roster.GetFranchiseStats(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *ClassroomServer) handleGetFranchiseBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.roster.ListFranchiseBadges(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, badges)
}

type catalogEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Rarity  string `json:"rarity"`
	Bonus   int    `json:"bonus"`
	Scope   string `json:"scope"`
	Bespoke bool   `json:"bespoke"`
}

func (s *ClassroomServer) handleBadgeCatalog(w http.ResponseWriter, r *http.Request) {
	var entries []catalogEntry
	for _, b := range s.registry.PlayerBadges() {
		entries = append(entries, catalogEntry{
			ID: string(b.ID), Name: b.Name, Rarity: string(b.Rarity),
			Bonus: b.Bonus, Scope: "player", Bespoke: b.Bespoke(),
		})
	}
	for _, b := range s.registry.FranchiseBadges() {
		entries = append(entries, catalogEntry{
			ID: string(b.ID), Name: b.Name, Rarity: string(b.Rarity),
			Bonus: b.Bonus, Scope: "franchise", Bespoke: b.Bespoke(),
		})
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *ClassroomServer) handleHallOfFame(w http.ResponseWriter, r *http.Request) {
	records, err := s.hallOfFame.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *ClassroomServer) handleAddPoints(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName  string `json:"playerName"`
		Points      int    `json:"points"`
		Action      string `json:"action"`
		TeacherName string `json:"teacherName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, domain.ErrValidation)
		return
	}

	result, err := s.scoring.ApplyScoringEvent(r.Context(), req.PlayerName, req.Points, req.Action, req.TeacherName)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	badges := make([]catalogEntry, 0, len(result.AwardedBadges))
	for _, b := range result.AwardedBadges {
		badges = append(badges, catalogEntry{
			ID: string(b.ID), Name: b.Name, Rarity: string(b.Rarity), Bonus: b.Bonus, Bespoke: b.Bespoke(),
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"newScore":      result.NewScore,
		"awardedBadges": badges,
		"degraded":      result.Degraded,
	})
}

func (s *ClassroomServer) handleUndoLast(w http.ResponseWriter, r *http.Request) {
	result, err := s.scoring.UndoLastEvent(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"newScore": result.NewScore,
		"degraded": result.Degraded,
	})
}

func (s *ClassroomServer) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Franchise string `json:"franchise"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, domain.ErrValidation)
		return
	}

	player, err := s.roster.AddStudent(r.Context(), req.Name, req.Franchise)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "player": player})
}

func (s *ClassroomServer) handleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.RemoveStudent(r.Context(), r.PathValue("name")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *ClassroomServer) handleChangeFranchise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName   string `json:"playerName"`
		NewFranchise string `json:"newFranchise"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, domain.ErrValidation)
		return
	}

	if err := s.roster.ChangeFranchise(r.Context(), req.PlayerName, req.NewFranchise); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *ClassroomServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound), errors.Is(err, domain.ErrFranchiseNotFound):
		s.writeError(w, r, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrNoHistory):
		s.writeError(w, r, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrValidation):
		s.writeError(w, r, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrDuplicatePlayer):
		s.writeError(w, r, http.StatusConflict, err)
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		s.writeError(w, r, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func (s *ClassroomServer) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *ClassroomServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}
