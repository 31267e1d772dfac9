package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/jaminalder/morabaraba/internal/app"
	"github.com/jaminalder/morabaraba/internal/domain"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	heartbeat time.Duration
	log       zerolog.Logger
}

func boardData(gs app.GameState) boardView {
	return newBoardView(gs.ID, gs.Snapshot(), gs.Game.Targets())
}

// broadcastBoard renders the board fragment pushed to subscribers. A render
// failure yields no payload.
func (h *handlers) broadcastBoard(gs app.GameState) []byte {
	b, err := renderTemplate(h.tpl.board, boardData(gs))
	if err != nil {
		h.log.Error().Err(err).Str("game", gs.ID).Msg("render broadcast")
		return nil
	}
	return b
}

// writeHTML renders t fully before writing, so a failed render becomes a
// 500 instead of a truncated page.
func writeHTML(w http.ResponseWriter, r *http.Request, t *template.Template, data any) {
	b, err := renderTemplate(t, data)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render page")
		http.Error(w, "failed to render", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, r, h.tpl.index, nil)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.CreateGame()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("create game")
		if errors.Is(err, app.ErrTooManyGames) {
			http.Error(w, "too many games", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gs, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	// Render page with embedded board container
	writeHTML(w, r, h.tpl.game, boardData(*gs))
}

func (h *handlers) selectPosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	pos, err := strconv.Atoi(r.Form.Get("pos"))
	if err != nil {
		http.Error(w, "pos must be an integer", http.StatusBadRequest)
		return
	}
	gs, _, err := h.svc.Select(id, pos)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, r, h.tpl.board, boardData(*gs))
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gs, err := h.svc.Reset(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, r, h.tpl.board, boardData(*gs))
}

type stateResponse struct {
	ID string `json:"id"`
	domain.State
	Flying  playerFlags `json:"flying"`
	Targets []int       `json:"targets"`
}

type playerFlags struct {
	One bool `json:"one"`
	Two bool `json:"two"`
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gs, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s := gs.Snapshot()
	targets := gs.Game.Targets()
	if targets == nil {
		targets = []int{}
	}
	writeJSON(w, r, stateResponse{
		ID:      gs.ID,
		State:   s,
		Flying:  playerFlags{One: s.Flying(domain.One), Two: s.Flying(domain.Two)},
		Targets: targets,
	})
}

type topologyResponse struct {
	Positions int           `json:"positions"`
	Adjacency [][]int       `json:"adjacency"`
	Mills     []domain.Mill `json:"mills"`
	Layout    [][2]int      `json:"layout"`
}

func (h *handlers) topology(w http.ResponseWriter, r *http.Request) {
	adj := domain.Topology()
	writeJSON(w, r, topologyResponse{
		Positions: domain.Positions,
		Adjacency: adj[:],
		Mills:     domain.Mills(),
		Layout:    coords[:],
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode response")
	}
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	// heartbeat ticker
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	// Initial flush of headers
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			if len(b) == 0 {
				continue
			}
			writeEvent(w, "board", b)
			flusher.Flush()
		}
	}
}

// writeEvent emits one SSE event; every payload line needs its own data field.
func writeEvent(w io.Writer, name string, payload []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", name)
	for _, line := range strings.Split(strings.TrimSpace(string(payload)), "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}
