package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/autograde/grader/internal/types"
)

var (
	_ AssignmentStore = (*MemoryAssignmentSource)(nil)
	_ GradeStore      = (*MemoryGradeStore)(nil)
)

// Grading configs held in process, for dry runs that never touch postgres
type MemoryAssignmentSource struct {
	configs map[string]types.AssignmentGradingConfig
	mu      sync.RWMutex
}

func NewMemoryAssignmentSource(configs ...types.AssignmentGradingConfig) *MemoryAssignmentSource {
	s := &MemoryAssignmentSource{configs: make(map[string]types.AssignmentGradingConfig, len(configs))}
	for _, cfg := range configs {
		s.configs[cfg.AssignmentID] = cfg
	}

	return s
}

func (s *MemoryAssignmentSource) GradingConfig(
	_ context.Context,
	assignmentID string,
) (*types.AssignmentGradingConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[assignmentID]
	if !ok {
		return nil, ErrNotFound
	}

	return &cfg, nil
}

func (s *MemoryAssignmentSource) Put(_ context.Context, cfg *types.AssignmentGradingConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cfg
	stored.Version = s.configs[cfg.AssignmentID].Version + 1
	s.configs[cfg.AssignmentID] = stored

	return nil
}

// Grade history held in process with the same supersede rules as GormGradeStore
type MemoryGradeStore struct {
	records []types.GradeRecord
	mu      sync.Mutex
	now     func() time.Time
}

func NewMemoryGradeStore() *MemoryGradeStore {
	return &MemoryGradeStore{now: time.Now}
}

func (s *MemoryGradeStore) Save(_ context.Context, record *types.GradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := s.now().UTC()
	for i := range s.records {
		existing := &s.records[i]
		if existing.SubmissionID != record.SubmissionID || !existing.IsCurrent() {
			continue
		}
		existing.SupersededAt = &now
		existing.SupersededBy = &record.ID
	}

	s.records = append(s.records, *record)
	return nil
}

func (s *MemoryGradeStore) Current(_ context.Context, submissionID string) (*types.GradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].SubmissionID == submissionID && s.records[i].IsCurrent() {
			record := s.records[i]
			return &record, nil
		}
	}

	return nil, ErrNotFound
}

func (s *MemoryGradeStore) ListCurrent(_ context.Context, assignmentID string) ([]types.GradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := []types.GradeRecord{}
	for _, r := range s.records {
		if r.AssignmentID == assignmentID && r.IsCurrent() {
			current = append(current, r)
		}
	}
	sort.SliceStable(current, func(i, j int) bool {
		if current[i].StudentID != current[j].StudentID {
			return current[i].StudentID < current[j].StudentID
		}
		return current[i].SubmissionID < current[j].SubmissionID
	})

	return current, nil
}

func (s *MemoryGradeStore) History(_ context.Context, submissionID string) ([]types.GradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := []types.GradeRecord{}
	for _, r := range s.records {
		if r.SubmissionID == submissionID {
			history = append(history, r)
		}
	}

	return history, nil
}
