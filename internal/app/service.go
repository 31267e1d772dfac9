package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jaminalder/morabaraba/internal/domain"
)

// Errors exposed by the service layer.
var (
	ErrNotFound     = errors.New("game not found")
	ErrTooManyGames = errors.New("too many games")
)

// Defaults used when Options leaves a field at zero.
const (
	DefaultMaxGames         = 1000
	DefaultSubscriberBuffer = 1
)

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Game    domain.Game
	Created time.Time
	Updated time.Time
}

// Snapshot returns the rules state of the game.
func (gs GameState) Snapshot() domain.State { return gs.Game.Snapshot() }

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Options tunes a Service. Zero values fall back to the defaults.
type Options struct {
	Logger           *zerolog.Logger
	MaxGames         int
	SubscriberBuffer int
}

// Service manages games and subscribers. Every game is driven through the
// service lock, so moves on one game never overlap.
type Service struct {
	mu       sync.Mutex
	games    map[string]*GameState
	subs     map[string]map[*subscriber]struct{}
	render   func(GameState) []byte
	log      zerolog.Logger
	maxGames int
	buffer   int
}

func nopRender(GameState) []byte { return nil }

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService() *Service { return NewServiceWithOptions(Options{}, nil) }

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte) *Service {
	return NewServiceWithOptions(Options{}, renderer)
}

// NewServiceWithOptions creates a service with explicit limits and logger.
func NewServiceWithOptions(opts Options, renderer func(GameState) []byte) *Service {
	if renderer == nil {
		renderer = nopRender
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.MaxGames <= 0 {
		opts.MaxGames = DefaultMaxGames
	}
	if opts.SubscriberBuffer <= 0 {
		opts.SubscriberBuffer = DefaultSubscriberBuffer
	}
	return &Service{
		games:    make(map[string]*GameState),
		subs:     make(map[string]map[*subscriber]struct{}),
		render:   renderer,
		log:      logger.With().Str("component", "service").Logger(),
		maxGames: opts.MaxGames,
		buffer:   opts.SubscriberBuffer,
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		renderer = nopRender
	}
	s.render = renderer
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.games) >= s.maxGames {
		s.log.Warn().Int("games", len(s.games)).Msg("refusing to create game")
		return nil, ErrTooManyGames
	}
	id := uuid.NewString()
	now := time.Now()
	gs := &GameState{ID: id, Game: domain.New(), Created: now, Updated: now}
	s.games[id] = gs
	s.log.Info().Str("game", id).Msg("game created")
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Targets lists the positions that would currently change the game.
func (s *Service) Targets(id string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return gs.Game.Targets(), nil
}

// Select feeds a clicked position into the game. It reports whether the
// state changed; subscribers are only notified when it did.
func (s *Service) Select(id string, pos int) (*GameState, bool, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, false, ErrNotFound
	}
	changed := gs.Game.Select(pos)
	if !changed {
		cp := *gs
		s.mu.Unlock()
		s.log.Debug().Str("game", id).Int("pos", pos).Msg("selection ignored")
		return &cp, false, nil
	}
	gs.Updated = time.Now()
	snap := gs.Game.Snapshot()
	cp := s.publishLocked(gs)
	s.mu.Unlock()

	ev := s.log.Debug()
	if snap.Over() {
		ev = s.log.Info()
	}
	ev.Str("game", id).
		Int("pos", pos).
		Stringer("phase", snap.Phase).
		Stringer("turn", snap.Turn).
		Bool("pending_removal", snap.PendingRemoval).
		Stringer("winner", snap.Winner).
		Msg("selection applied")
	return &cp, true, nil
}

// Reset starts the game over and notifies subscribers.
func (s *Service) Reset(id string) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	gs.Game.Reset()
	gs.Updated = time.Now()
	cp := s.publishLocked(gs)
	s.mu.Unlock()

	s.log.Info().Str("game", id).Msg("game reset")
	return &cp, nil
}

// publishLocked renders gs and offers the payload to its subscribers
// without blocking; slow subscribers are closed and dropped. s.mu must be
// held, so a subscriber can never be closed while a send is in flight.
func (s *Service) publishLocked(gs *GameState) GameState {
	cp := *gs
	set := s.subs[gs.ID]
	if len(set) == 0 {
		return cp
	}
	payload := s.render(cp)
	dropped := 0
	for sub := range set {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			delete(set, sub)
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Warn().Str("game", gs.ID).Int("dropped", dropped).Msg("dropping slow subscribers")
	}
	return cp
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func; the subscription also ends when ctx is done.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, s.buffer)}
	set[sub] = struct{}{}

	done := make(chan struct{})
	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			close(done)
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			sub.close()
			s.mu.Unlock()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			unsub()
		case <-done:
		}
	}()
	return sub.ch, unsub, nil
}

// Subscribers returns how many subscribers a game currently has.
func (s *Service) Subscribers(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[id])
}
