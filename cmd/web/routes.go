package main

import (
	"context"
	"net/http"
	"time"

	"github.com/EmptySpace206/PHRatings/internal/httputil"
	"github.com/EmptySpace206/PHRatings/internal/middleware"
	"github.com/EmptySpace206/PHRatings/internal/service"
	"github.com/EmptySpace206/PHRatings/internal/video"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type application struct {
	sessionManager *scs.SessionManager
	players        *service.PlayerService
	admins         *service.AdminService
	challenges     *service.ChallengeService
	tournaments    *service.TournamentService
	matches        *service.MatchService
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(middleware.LoadActor(app.sessionManager))

	// Public endpoints
	r.Post("/players", app.registerPlayer)
	r.Get("/players", app.listPlayers)
	r.Post("/players/login", app.playerLogin)
	r.Post("/admin/login", app.adminLogin)
	r.Post("/logout", app.logout)
	r.Get("/challenges", app.listChallenges)
	r.Get("/tournaments", app.listTournaments)
	r.Get("/tournaments/{id}/participants", app.listParticipants)
	r.Get("/matches", app.listMatches)

	// Player endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePlayer)

		r.Post("/players/unregister", app.unregisterPlayer)
		r.Put("/players/weight", app.updateWeight)

		r.Post("/challenges", app.createChallenge)
		r.Post("/challenges/{id}/accept", app.acceptChallenge)

		r.Post("/tournaments", app.createTournament)
		r.Post("/tournaments/{id}/join", app.joinTournament)
		r.Delete("/tournaments/{id}/leave", app.leaveTournament)
		r.Post("/tournaments/{id}/record-match", app.recordTournamentMatch)

		r.Post("/matches/{id}/result", app.recordMatchResult)
		r.Post("/matches/undo", app.undoLastMatch)
		r.Post("/matches", app.recordDirectMatch)
	})

	// Admin endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Post("/admin/register", app.registerAdmin)
		r.Get("/admin/players/pending", app.listPendingPlayers)
		r.Post("/admin/players/{id}/approve", app.approvePlayer)
		r.Post("/admin/players/{id}/reject", app.rejectPlayer)
		r.Post("/admin/tournaments/{id}/complete", app.completeTournament)
	})

	return r
}

func urlID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// Player management

func (app *application) registerPlayer(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string  `json:"name"`
		Age      int     `json:"age"`
		Weight   float64 `json:"weight"`
		Password string  `json:"password"`
	}
	if err := decodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}
	if input.Name == "" || input.Age <= 0 || input.Weight <= 0 || input.Password == "" {
		httputil.BadRequest(w, "Name, age, weight, and password required", nil)
		return
	}

	player, err := app.players.Register(r.Context(), input.Name, input.Age, input.Weight, input.Password)
	if err != nil {
		httputil.DomainError(w, "Failed to register player", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     player.ID,
		"name":   player.Name,
		"rating": player.Rating,
		"age":    player.Age,
		"weight": player.Weight,
		"status": player.Status,
	})
}

func (app *application) listPlayers(w http.ResponseWriter, r *http.Request) {
	includeUnregistered := r.URL.Query().Get("include_unregistered") == "true"

	players, err := app.players.ListPlayers(r.Context(), includeUnregistered)
	if err != nil {
		httputil.InternalServerError(w, "Failed to list players", err)
		return
	}

	now := app.players.Clock().Now()
	out := make([]map[string]interface{}, 0, len(players))
	for _, p := range players {
		out = append(out, map[string]interface{}{
			"id":                  p.ID,
			"name":                p.Name,
			"rating":              p.Rating,
			"age":                 p.Age,
			"current_age":         p.CurrentAge(now),
			"weight":              p.Weight,
			"status":              p.Status,
			"unregistration_date": p.UnregistrationDate,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (app *application) playerLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	player, err := app.players.Authenticate(r.Context(), input.Name, input.Password)
	if err != nil {
		httputil.Unauthorized(w, "Invalid credentials")
		return
	}

	middleware.LoginPlayer(r.Context(), app.sessionManager, player.ID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": player.ID, "name": player.Name})
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to log out", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (app *application) unregisterPlayer(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	if err := app.players.Unregister(r.Context(), actor.ID); err != nil {
		httputil.DomainError(w, "Failed to unregister player", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Player unregistered successfully",
		"note":    "Match history and rating preserved",
	})
}

func (app *application) updateWeight(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var input struct {
		Weight float64 `json:"weight"`
	}
	if err := decodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := app.players.UpdateWeight(r.Context(), actor.ID, input.Weight); err != nil {
		httputil.DomainError(w, "Failed to update weight", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Weight updated", "new_weight": input.Weight})
}

// Admin

func (app *application) adminLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	admin, err := app.admins.Authenticate(r.Context(), input.Username, input.Password)
	if err != nil {
		httputil.Unauthorized(w, "Invalid credentials")
		return
	}

	middleware.LoginAdmin(r.Context(), app.sessionManager, admin.ID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": admin.ID, "username": admin.Username})
}

func (app *application) registerAdmin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}
	if input.Username == "" || input.Password == "" {
		httputil.BadRequest(w, "Username and password required", nil)
		return
	}

	if _, err := app.admins.Register(r.Context(), input.Username, input.Password); err != nil {
		httputil.DomainError(w, "Failed to create admin", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Admin created successfully"})
}

func (app *application) listPendingPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := app.players.ListPendingPlayers(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to list pending players", err)
		return
	}

	out := make([]map[string]interface{}, 0, len(players))
	for _, p := range players {
		out = append(out, map[string]interface{}{
			"id":                p.ID,
			"name":              p.Name,
			"age":               p.Age,
			"weight":            p.Weight,
			"registration_date": p.RegistrationDate,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (app *application) approvePlayer(w http.ResponseWriter, r *http.Request) {
	app.reviewPlayer(w, r, app.players.Approve, "Player approved")
}

func (app *application) rejectPlayer(w http.ResponseWriter, r *http.Request) {
	app.reviewPlayer(w, r, app.players.Reject, "Player rejected")
}

func (app *application) reviewPlayer(w http.ResponseWriter, r *http.Request, review func(ctx context.Context, id uuid.UUID) error, message string) {
	id, err := urlID(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid player ID", err)
		return
	}

	if err := review(r.Context(), id); err != nil {
		httputil.DomainError(w, "Failed to review player", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (app *application) completeTournament(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}

	if err := app.tournaments.Complete(r.Context(), id); err != nil {
		httputil.DomainError(w, "Failed to complete tournament", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tournament completed"})
}

// Challenges

func (app *application) createChallenge(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var input struct {
		ChallengedID uuid.UUID `json:"challenged_id"`
		HostID       uuid.UUID `json:"host_id"`
	}
	if err := decodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	challenge, err := app.challenges.Create(r.Context(), actor.ID, input.ChallengedID, input.HostID)
	if err != nil {
		httputil.DomainError(w, "Failed to create challenge", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"challenge_id": challenge.ID,
		"expires_at":   challenge.ExpiresAt,
	})
}

func (app *application) acceptChallenge(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid challenge ID", err)
		return
	}

	result, err := app.challenges.Accept(r.Context(), id, actor.ID)
	if err != nil {
		httputil.DomainError(w, "Failed to accept challenge", err)
		return
	}

	if result.MatchID != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":  "Match created",
			"match_id": *result.MatchID,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Challenge accepted, waiting for other party"})
}

func (app *application) listChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := app.challenges.ListChallenges(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to list challenges", err)
		return
	}

	out := make([]map[string]interface{}, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, map[string]interface{}{
			"id":            c.ID,
			"challenger_id": c.ChallengerID,
			"challenged_id": c.ChallengedID,
			"host_id":       c.HostID,
			"status":        c.Status,
			"created_at":    c.CreatedAt,
			"expires_at":    c.ExpiresAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Tournaments

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var input struct {
		Name      string    `json:"name"`
		StartTime time.Time `json:"start_time"`
	}
	if err := decodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}
	if input.Name == "" || input.StartTime.IsZero() {
		httputil.BadRequest(w, "Name and start_time required", nil)
		return
	}

	tournament, err := app.tournaments.Create(r.Context(), input.Name, actor.ID, input.StartTime)
	if err != nil {
		httputil.DomainError(w, "Failed to create tournament", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tournament_id": tournament.ID,
		"name":          tournament.Name,
		"start_time":    tournament.StartTime,
	})
}

func (app *application) joinTournament(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}

	if err := app.tournaments.Join(r.Context(), id, actor.ID); err != nil {
		httputil.DomainError(w, "Failed to join tournament", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully joined tournament"})
}

func (app *application) leaveTournament(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}

	if err := app.tournaments.Leave(r.Context(), id, actor.ID); err != nil {
		httputil.DomainError(w, "Failed to leave tournament", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully left tournament"})
}

func (app *application) recordTournamentMatch(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}

	var input struct {
		Player1ID uuid.UUID `json:"player1_id"`
		Player2ID uuid.UUID `json:"player2_id"`
		WinnerID  uuid.UUID `json:"winner_id"`
		Notes     string    `json:"notes"`
		VideoLink string    `json:"video_link"`
	}
	if err := decodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	result, err := app.tournaments.RecordMatch(r.Context(), service.RecordMatchInput{
		TournamentID: id,
		HostID:       actor.ID,
		Player1ID:    input.Player1ID,
		Player2ID:    input.Player2ID,
		WinnerID:     input.WinnerID,
		Notes:        input.Notes,
		VideoLink:    input.VideoLink,
	})
	if err != nil {
		httputil.DomainError(w, "Failed to record tournament match", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":           "Tournament match result recorded",
		"match_id":          result.Match.ID,
		"winner_new_rating": result.WinnerRating,
		"loser_new_rating":  result.LoserRating,
	})
}

func (app *application) listParticipants(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}

	participants, err := app.tournaments.ListParticipants(r.Context(), id)
	if err != nil {
		httputil.DomainError(w, "Failed to list participants", err)
		return
	}

	out := make([]map[string]interface{}, 0, len(participants))
	for _, p := range participants {
		out = append(out, map[string]interface{}{
			"player_id":     p.PlayerID,
			"player_name":   p.PlayerName,
			"player_rating": p.PlayerRating,
			"player_status": p.PlayerStatus,
			"joined_at":     p.JoinedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.ListTournaments(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to list tournaments", err)
		return
	}

	out := make([]map[string]interface{}, 0, len(tournaments))
	for _, t := range tournaments {
		out = append(out, map[string]interface{}{
			"id":                t.ID,
			"name":              t.Name,
			"host_id":           t.HostID,
			"start_time":        t.StartTime,
			"status":            t.Status,
			"participant_count": t.ParticipantCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Matches

func (app *application) recordMatchResult(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		httputil.BadRequest(w, "Invalid match ID", err)
		return
	}

	var input struct {
		WinnerID  uuid.UUID `json:"winner_id"`
		Notes     string    `json:"notes"`
		VideoLink string    `json:"video_link"`
	}
	if err := decodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	result, err := app.matches.RecordResult(r.Context(), id, actor.ID, input.WinnerID, input.Notes, input.VideoLink)
	if err != nil {
		httputil.DomainError(w, "Failed to record match result", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":           "Match result recorded",
		"winner_new_rating": result.WinnerRating,
		"loser_new_rating":  result.LoserRating,
	})
}

func (app *application) undoLastMatch(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	result, err := app.matches.UndoLast(r.Context(), actor.ID)
	if err != nil {
		httputil.DomainError(w, "Failed to undo match", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":                "Last match undone successfully",
		"match_id":               result.Match.ID,
		"winner_reverted_rating": result.WinnerRating,
		"loser_reverted_rating":  result.LoserRating,
	})
}

func (app *application) recordDirectMatch(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Player1ID   *uuid.UUID `json:"player1_id"`
		Player1Name string     `json:"player1_name"`
		Player2ID   *uuid.UUID `json:"player2_id"`
		Player2Name string     `json:"player2_name"`
		WinnerID    *uuid.UUID `json:"winner_id"`
		WinnerName  string     `json:"winner_name"`
		Notes       string     `json:"notes"`
		VideoLink   string     `json:"video_link"`
	}
	if err := decodeJSON(r, &input); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	result, err := app.matches.RecordDirect(r.Context(),
		service.PlayerRef{ID: input.Player1ID, Name: input.Player1Name},
		service.PlayerRef{ID: input.Player2ID, Name: input.Player2Name},
		service.PlayerRef{ID: input.WinnerID, Name: input.WinnerName},
		input.Notes, input.VideoLink)
	if err != nil {
		httputil.DomainError(w, "Failed to record match", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"match_id": result.Match.ID})
}

func (app *application) listMatches(w http.ResponseWriter, r *http.Request) {
	var playerID, tournamentID *uuid.UUID
	if s := r.URL.Query().Get("player_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			httputil.BadRequest(w, "Invalid player_id", err)
			return
		}
		playerID = &id
	}
	if s := r.URL.Query().Get("tournament_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			httputil.BadRequest(w, "Invalid tournament_id", err)
			return
		}
		tournamentID = &id
	}

	matches, err := app.matches.ListMatches(r.Context(), playerID, tournamentID)
	if err != nil {
		httputil.InternalServerError(w, "Failed to list matches", err)
		return
	}

	out := make([]map[string]interface{}, 0, len(matches))
	for _, m := range matches {
		entry := map[string]interface{}{
			"id":            m.ID,
			"player1_id":    m.Player1ID,
			"player2_id":    m.Player2ID,
			"winner_id":     m.WinnerID,
			"host_id":       m.HostID,
			"tournament_id": m.TournamentID,
			"challenge_id":  m.ChallengeID,
			"status":        m.Status,
			"created_at":    m.CreatedAt,
			"completed_at":  m.CompletedAt,
			"notes":         m.Notes,
			"video_link":    m.VideoLink,
		}
		if embed := video.GetEmbedInfo(m.VideoLink); embed.Type != video.EmbedTypeNone {
			entry["video_embed"] = map[string]string{"type": embed.Type.String(), "url": embed.URL}
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}
