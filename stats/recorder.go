package stats

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"snake-torus/game"
)

// Recorder turns reset events into game records for one session.
type Recorder struct {
	store   *Store
	session uuid.UUID
	logger  *log.Logger

	mu    sync.Mutex
	start time.Time
}

func NewRecorder(store *Store, session uuid.UUID, start time.Time, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{store: store, session: session, logger: logger, start: start}
}

func (r *Recorder) Session() uuid.UUID {
	return r.session
}

// Listen is a game.Listener.
func (r *Recorder) Listen(ev game.Event) {
	if ev.Type != game.EventReset {
		return
	}
	r.mu.Lock()
	start := r.start
	r.start = ev.At
	r.mu.Unlock()

	r.store.AddGame(r.session.String(), ev.FinalScore, ev.FinalLength, start, ev.At)
	r.logger.Printf("stats: game over score=%d length=%d manual=%v", ev.FinalScore, ev.FinalLength, ev.Manual)
}

// Finish records the game still in progress and saves the history.
func (r *Recorder) Finish(snap *game.Snapshot, now time.Time) error {
	r.mu.Lock()
	start := r.start
	r.start = now
	r.mu.Unlock()

	if snap != nil && now.After(start) {
		r.store.AddGame(r.session.String(), snap.Score, len(snap.Snake), start, now)
	}
	if err := r.store.Save(); err != nil {
		r.logger.Printf("stats: %v", err)
		return err
	}
	return nil
}
