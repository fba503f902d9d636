package out

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"lectern/internal/modules/sync/domain"
	syncout "lectern/internal/modules/sync/port/out"
)

const defaultTail = 50

// FileActivityStore appends one JSON object per line to <dataDir>/sync/activity.log.
type FileActivityStore struct {
	mu   sync.Mutex
	path string
}

func NewFileActivityStore(dataDir string) syncout.ActivityStore {
	return &FileActivityStore{path: filepath.Join(dataDir, "sync", "activity.log")}
}

func (s *FileActivityStore) Append(_ context.Context, activity domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("encode sync activity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create activity dir: %w", err)
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open activity log: %w", err)
	}
	defer file.Close()
	if _, err := file.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}

// Tail returns the last query.Limit entries, oldest first. Lines that do not
// decode are skipped.
func (s *FileActivityStore) Tail(_ context.Context, query syncout.ActivityQuery) ([]domain.Activity, error) {
	if query.Limit <= 0 {
		query.Limit = defaultTail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Activity{}, nil
		}
		return nil, fmt.Errorf("open activity log: %w", err)
	}
	defer file.Close()

	buffer := make([]domain.Activity, 0, query.Limit)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		activity := domain.Activity{}
		if err := json.Unmarshal(line, &activity); err != nil {
			continue
		}
		if len(buffer) < query.Limit {
			buffer = append(buffer, activity)
			continue
		}
		copy(buffer, buffer[1:])
		buffer[len(buffer)-1] = activity
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan activity log: %w", err)
	}
	return buffer, nil
}
