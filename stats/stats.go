package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// GroupSize is how many records of one compression level are folded into
// a single record of the next level.
const GroupSize = 100

// GameRecord is one finished game, or a group of games once compressed.
type GameRecord struct {
	SessionID        string    `json:"sessionId,omitempty"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	Score            int       `json:"score"`
	Length           int       `json:"length"`
	CompressionIndex int       `json:"compressionIndex"` // 0 for single games
	GamesCount       int       `json:"gamesCount"`
	AverageScore     float64   `json:"averageScore"`
	MedianScore      float64   `json:"medianScore"`
	MaxScore         int       `json:"maxScore"`
	MinScore         int       `json:"minScore"`
	MaxLength        int       `json:"maxLength"`
	AverageDuration  float64   `json:"averageDuration"`
	MaxDuration      float64   `json:"maxDuration"`
	MinDuration      float64   `json:"minDuration"`
}

// Summary aggregates every record in a Store.
type Summary struct {
	GamesPlayed     int     `json:"gamesPlayed"`
	AverageScore    float64 `json:"averageScore"`
	MedianScore     float64 `json:"medianScore"`
	MaxScore        int     `json:"maxScore"`
	MaxLength       int     `json:"maxLength"`
	AverageDuration float64 `json:"averageDuration"`
	MaxDuration     float64 `json:"maxDuration"`
}

// Store keeps the game history and persists it as JSON.
type Store struct {
	path      string
	groupSize int

	mu    sync.RWMutex
	games []GameRecord
}

// Open loads the history at path. A missing file is a fresh start.
func Open(path string) (*Store, error) {
	s := &Store{path: path, groupSize: GroupSize}
	if err := s.loadFromFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// AddGame records a finished game.
func (s *Store) AddGame(sessionID string, score, length int, start, end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secs := end.Sub(start).Seconds()
	s.games = append(s.games, GameRecord{
		SessionID:       sessionID,
		StartTime:       start,
		EndTime:         end,
		Score:           score,
		Length:          length,
		GamesCount:      1,
		AverageScore:    float64(score),
		MedianScore:     float64(score),
		MaxScore:        score,
		MinScore:        score,
		MaxLength:       length,
		AverageDuration: secs,
		MaxDuration:     secs,
		MinDuration:     secs,
	})
	s.groupGames()
}

// groupGames folds every full run of groupSize records at one level into
// a single record of the next level, cascading upwards.
func (s *Store) groupGames() {
	s.sortGames()
	for level := 0; ; level++ {
		var records, others []GameRecord
		for _, g := range s.games {
			if g.CompressionIndex == level {
				records = append(records, g)
			} else {
				others = append(others, g)
			}
		}
		if len(records) < s.groupSize {
			return
		}

		for len(records) >= s.groupSize {
			others = append(others, mergeGroup(records[:s.groupSize], level+1))
			records = records[s.groupSize:]
		}
		s.games = append(others, records...)
		s.sortGames()
	}
}

// sortGames orders the most compressed records first, oldest first
// within a level.
func (s *Store) sortGames() {
	sort.SliceStable(s.games, func(i, j int) bool {
		if s.games[i].CompressionIndex != s.games[j].CompressionIndex {
			return s.games[i].CompressionIndex > s.games[j].CompressionIndex
		}
		return s.games[i].StartTime.Before(s.games[j].StartTime)
	})
}

func mergeGroup(group []GameRecord, level int) GameRecord {
	out := GameRecord{
		StartTime:        group[0].StartTime,
		EndTime:          group[0].EndTime,
		CompressionIndex: level,
		MaxScore:         group[0].MaxScore,
		MinScore:         group[0].MinScore,
		MaxDuration:      group[0].MaxDuration,
		MinDuration:      group[0].MinDuration,
	}
	var totalScore, totalDuration float64
	var medians []float64
	for _, g := range group {
		out.MaxScore = max(out.MaxScore, g.MaxScore)
		out.MinScore = min(out.MinScore, g.MinScore)
		out.MaxLength = max(out.MaxLength, g.MaxLength)
		out.MaxDuration = max(out.MaxDuration, g.MaxDuration)
		out.MinDuration = min(out.MinDuration, g.MinDuration)
		if g.StartTime.Before(out.StartTime) {
			out.StartTime = g.StartTime
		}
		if g.EndTime.After(out.EndTime) {
			out.EndTime = g.EndTime
		}
		totalScore += g.AverageScore * float64(g.GamesCount)
		totalDuration += g.AverageDuration * float64(g.GamesCount)
		out.GamesCount += g.GamesCount
		for i := 0; i < g.GamesCount; i++ {
			medians = append(medians, g.MedianScore)
		}
	}
	out.AverageScore = totalScore / float64(out.GamesCount)
	out.AverageDuration = totalDuration / float64(out.GamesCount)
	out.MedianScore = median(medians)
	out.Score = out.MaxScore
	out.Length = out.MaxLength
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	n := len(values)
	if n%2 == 0 {
		return (values[n/2-1] + values[n/2]) / 2
	}
	return values[n/2]
}

// Games returns a copy of the stored records.
func (s *Store) Games() []GameRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]GameRecord(nil), s.games...)
}

func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum Summary
	if len(s.games) == 0 {
		return sum
	}
	var totalScore, totalDuration float64
	var medians []float64
	for _, g := range s.games {
		sum.GamesPlayed += g.GamesCount
		sum.MaxScore = max(sum.MaxScore, g.MaxScore)
		sum.MaxLength = max(sum.MaxLength, g.MaxLength)
		sum.MaxDuration = max(sum.MaxDuration, g.MaxDuration)
		totalScore += g.AverageScore * float64(g.GamesCount)
		totalDuration += g.AverageDuration * float64(g.GamesCount)
		for i := 0; i < g.GamesCount; i++ {
			medians = append(medians, g.MedianScore)
		}
	}
	sum.AverageScore = totalScore / float64(sum.GamesPlayed)
	sum.AverageDuration = totalDuration / float64(sum.GamesPlayed)
	sum.MedianScore = median(medians)
	return sum
}

// HighScore is the best score on record.
func (s *Store) HighScore() int {
	return s.Summary().MaxScore
}

// Save writes the history to disk, creating the directory if needed.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := json.MarshalIndent(s.games, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats data: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	return nil
}

func (s *Store) loadFromFile() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read stats file: %w", err)
	}
	if err := json.Unmarshal(data, &s.games); err != nil {
		return fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return nil
}
