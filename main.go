package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"snake-torus/ai"
	"snake-torus/audio"
	"snake-torus/config"
	"snake-torus/game"
	"snake-torus/input"
	"snake-torus/spectator"
	"snake-torus/stats"
	"snake-torus/ui"
)

func init() {
	// raylib must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "snake:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "JSON config file")
	frontend := flag.String("frontend", "", "terminal or window")
	speed := flag.Int("speed", 0, "Movement interval in milliseconds (lower = faster)")
	httpAddr := flag.String("http", "", "Spectator API address, e.g. :8080")
	sound := flag.Bool("sound", false, "Play sound cues")
	autopilot := flag.Bool("autopilot", false, "Let the Q-learning agent play")
	seed := flag.Uint64("seed", 0, "Random seed (0 = time based)")
	dataDir := flag.String("data", "", "Directory for stats, q-table and logs")
	expiry := flag.String("expiry", "", "Food expiry: deadline or sweep")
	train := flag.Int("train", 0, "Train the autopilot headless for this many games, then exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	// Flags only override what was given on the command line.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "frontend":
			cfg.Frontend = *frontend
		case "speed":
			cfg.MoveIntervalMs = *speed
		case "http":
			cfg.HTTPAddr = *httpAddr
		case "sound":
			cfg.Sound = *sound
		case "autopilot":
			cfg.Autopilot = *autopilot
		case "seed":
			cfg.Seed = *seed
		case "data":
			cfg.DataDir = *dataDir
		case "expiry":
			cfg.ExpiryMode = *expiry
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logger, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	session := uuid.New()
	logger.Printf("snake: session %s, grid %dx%d, timing %+v, seed %d", session, cfg.GridWidth, cfg.GridHeight, cfg.Timing(), cfg.Seed)

	qtablePath := filepath.Join(cfg.DataDir, "qtable.json")
	if *train > 0 {
		return runTraining(cfg, *train, qtablePath, logger)
	}

	store, err := stats.Open(filepath.Join(cfg.DataDir, "stats.json"))
	if err != nil {
		return err
	}

	now := time.Now()
	g := game.New(game.Options{Grid: cfg.Grid(), FoodLifetime: cfg.FoodLifetime(), Seed: cfg.Seed}, now)
	g.SetHighScore(store.HighScore(), now)

	recorder := stats.NewRecorder(store, session, now, logger)
	g.AddListener(recorder.Listen)
	history := ui.NewHistory()
	g.AddListener(history.Listen)

	var sources []input.Source

	var pilot *ai.Autopilot
	if cfg.Autopilot {
		q := ai.NewQLearning(rand.New(rand.NewSource(cfg.Seed + 1)))
		if err := q.LoadQTable(qtablePath); err != nil {
			return err
		}
		pilot = ai.NewAutopilot(q, logger)
		g.AddListener(pilot.Listen)
		sources = append(sources, pilot)
	}

	if cfg.Sound {
		player := audio.NewPlayer(logger)
		if err := player.Initialize(); err != nil {
			logger.Printf("audio: %v, continuing without sound", err)
		} else {
			defer player.Cleanup()
			g.AddListener(player.Listen)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.HTTPAddr != "" {
		srv := spectator.NewServer(g, store, session.String(), logger)
		g.AddListener(srv.Listen)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
				logger.Printf("spectator: %v", err)
			}
		}()
	}

	var frontendRun func(context.Context) error
	switch cfg.Frontend {
	case config.FrontendWindow:
		win := ui.NewWindow("Snake", history)
		sources = append(sources, win)
		frontendRun = func(ctx context.Context) error {
			win.Run(ctx, g.Snapshot)
			return nil
		}
	default:
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		term := ui.NewTerminal(screen, history)
		sources = append(sources, term)
		frontendRun = func(ctx context.Context) error {
			return term.Run(ctx, g.Snapshot)
		}
	}

	sched := game.NewScheduler(g, game.SchedulerConfig{
		Timing:  cfg.Timing(),
		Sources: sources,
		Logger:  logger,
	})
	schedDone := make(chan error, 1)
	go func() {
		schedDone <- sched.Run(ctx)
		cancel()
	}()

	frontendErr := frontendRun(ctx)
	cancel()
	if err := <-schedDone; err != nil {
		logger.Printf("scheduler: %v", err)
	}

	if err := recorder.Finish(g.Snapshot(), time.Now()); err != nil {
		logger.Printf("stats: %v", err)
	}
	if pilot != nil {
		if err := pilot.QLearning().SaveQTable(qtablePath); err != nil {
			logger.Printf("autopilot: %v", err)
		}
	}
	sum := store.Summary()
	logger.Printf("snake: %d games played, best %d, average %.2f", sum.GamesPlayed, sum.MaxScore, sum.AverageScore)
	return frontendErr
}

func runTraining(cfg *config.Config, episodes int, qtablePath string, logger *log.Logger) error {
	q := ai.NewQLearning(rand.New(rand.NewSource(cfg.Seed + 1)))
	if err := q.LoadQTable(qtablePath); err != nil {
		return err
	}
	g := game.New(game.Options{Grid: cfg.Grid(), FoodLifetime: cfg.FoodLifetime(), Seed: cfg.Seed}, time.Now())
	pilot := ai.NewAutopilot(q, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	res, err := ai.Train(ctx, g, pilot, ai.TrainOptions{
		Episodes:        episodes,
		Timing:          cfg.Timing(),
		CheckpointEvery: 500,
		Checkpoint:      func() error { return q.SaveQTable(qtablePath) },
	})
	if err != nil && err != context.Canceled {
		return err
	}
	logger.Printf("autopilot: trained %d games in %d steps, best %d, average %.2f", res.Episodes, res.Steps, res.BestScore, res.AverageScore())
	return q.SaveQTable(qtablePath)
}

// setupLogging keeps the terminal frontend's screen clean by sending the
// log to a file.
func setupLogging(cfg *config.Config) (*log.Logger, func(), error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	path := cfg.LogFile
	if path == "" && cfg.Frontend == config.FrontendTerminal {
		path = filepath.Join(cfg.DataDir, "snake.log")
	}
	if path == "" {
		return log.Default(), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return log.Default(), func() { f.Close() }, nil
}
