package store

import (
	"sync"
	"time"

	"github.com/datapipeline/pipelinemanager/pkg/types"
)

// Defaults applied to pipelines created through the API.
const (
	DefaultPipelineName = "New Pipeline"
	DefaultOwner        = "admin"
	DefaultAvgDuration  = "0s"
)

// Repository is the read/append interface the API handlers depend on.
type Repository interface {
	// Pipelines returns every pipeline in insertion order.
	Pipelines() []types.Pipeline
	// Pipeline returns the pipeline with the given id.
	Pipeline(id int) (types.Pipeline, bool)
	// CreatePipeline fills defaults for absent fields, assigns the next id
	// and appends the result.
	CreatePipeline(d types.PipelineDraft) types.Pipeline
	Schemas() []types.Schema
	QualityChecks() []types.QualityCheck
	Alerts() []types.Alert
}

// Store is a thread-safe in-memory Repository. Pipelines are append-only;
// the other collections are fixed at construction.
type Store struct {
	mu        sync.RWMutex
	pipelines []types.Pipeline
	nextID    int

	schemas []types.Schema
	checks  []types.QualityCheck
	alerts  []types.Alert
	now     func() time.Time // injectable for deterministic tests
}

var _ Repository = (*Store)(nil)

// New creates a Store holding a copy of seed. The id counter starts one past
// the highest seeded pipeline id.
func New(seed Seed) *Store {
	s := &Store{
		pipelines: clone(seed.Pipelines),
		schemas:   clone(seed.Schemas),
		checks:    clone(seed.QualityChecks),
		alerts:    clone(seed.Alerts),
		nextID:    1,
		now:       time.Now,
	}
	for _, p := range s.pipelines {
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	return s
}

// Pipelines returns a copy of the pipeline collection.
func (s *Store) Pipelines() []types.Pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.pipelines)
}

// Pipeline does a linear search by id.
func (s *Store) Pipeline(id int) (types.Pipeline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pipelines {
		if p.ID == id {
			return p, true
		}
	}
	return types.Pipeline{}, false
}

// CreatePipeline appends a draft pipeline. Id assignment and append happen
// under one lock so concurrent creates never share an id.
func (s *Store) CreatePipeline(d types.PipelineDraft) types.Pipeline {
	p := types.Pipeline{
		Name:        DefaultPipelineName,
		Status:      types.StatusDraft,
		AvgDuration: DefaultAvgDuration,
		Schedule:    types.ScheduleManual,
		Owner:       DefaultOwner,
	}
	if d.Name != nil {
		p.Name = *d.Name
	}
	if d.Description != nil {
		p.Description = *d.Description
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	p.CreatedAt = types.NewDate(s.now())
	s.pipelines = append(s.pipelines, p)
	return p
}

// Schemas returns a copy of the schema collection.
func (s *Store) Schemas() []types.Schema {
	return clone(s.schemas)
}

// QualityChecks returns a copy of the quality-check collection.
func (s *Store) QualityChecks() []types.QualityCheck {
	return clone(s.checks)
}

// Alerts returns a copy of the alert collection.
func (s *Store) Alerts() []types.Alert {
	return clone(s.alerts)
}

// clone copies in, returning an empty (non-nil) slice so lists always
// encode as [] rather than null.
func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
