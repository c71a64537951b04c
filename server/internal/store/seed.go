package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/datapipeline/pipelinemanager/pkg/types"
)

// Seed is the initial content of a Store.
type Seed struct {
	Pipelines     []types.Pipeline     `yaml:"pipelines"`
	Schemas       []types.Schema       `yaml:"schemas"`
	QualityChecks []types.QualityCheck `yaml:"quality_checks"`
	Alerts        []types.Alert        `yaml:"alerts"`
}

// DefaultSeed returns the built-in demo catalog: two pipelines, one schema,
// one quality check and two alerts.
func DefaultSeed() Seed {
	return Seed{
		Pipelines: []types.Pipeline{
			{
				ID:          1,
				Name:        "Customer Data ETL",
				Description: "ETL pipeline for customer data processing",
				Status:      types.StatusActive,
				LastRun:     types.MustTimestamp("2024-01-15 10:30:00"),
				NextRun:     types.MustTimestamp("2024-01-15 11:30:00"),
				SuccessRate: 95,
				AvgDuration: "2m 15s",
				Schedule:    types.ScheduleHourly,
				Owner:       "admin",
				CreatedAt:   types.MustDate("2024-01-01"),
			},
			{
				ID:          2,
				Name:        "Sales Analytics",
				Description: "Analytics pipeline for sales data",
				Status:      types.StatusPaused,
				LastRun:     types.MustTimestamp("2024-01-15 09:00:00"),
				NextRun:     types.MustTimestamp("2024-01-16 09:00:00"),
				SuccessRate: 88,
				AvgDuration: "5m 30s",
				Schedule:    types.ScheduleDaily,
				Owner:       "analytics-team",
				CreatedAt:   types.MustDate("2024-01-05"),
			},
		},
		Schemas: []types.Schema{
			{
				ID:          1,
				Name:        "Customer Schema",
				Version:     "1.0.0",
				Description: "Schema for customer data validation",
				Status:      "active",
				Fields:      15,
				LastUpdated: *types.MustTimestamp("2024-01-15 10:30:00"),
				Owner:       "admin",
			},
		},
		QualityChecks: []types.QualityCheck{
			{
				ID:           1,
				Name:         "Customer Email Validation",
				Description:  "Validates customer email format and uniqueness",
				Type:         "completeness",
				Status:       "active",
				Threshold:    95,
				CurrentScore: 98,
				LastRun:      *types.MustTimestamp("2024-01-15 10:30:00"),
				Owner:        "admin",
			},
		},
		Alerts: []types.Alert{
			{
				ID:        1,
				Severity:  "warning",
				Message:   "Memory usage approaching threshold",
				Timestamp: *types.MustTimestamp("2024-01-15 10:25:00"),
				Status:    "active",
			},
			{
				ID:        2,
				Severity:  "info",
				Message:   "Pipeline 'Inventory Sync' completed with warnings",
				Timestamp: *types.MustTimestamp("2024-01-15 10:20:00"),
				Status:    "resolved",
			},
		},
	}
}

// LoadSeed reads a YAML seed file. Sections absent from the file are left
// empty; they are not filled from DefaultSeed.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("seed: read %q: %w", path, err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("seed: parse yaml: %w", err)
	}
	if err := validateSeed(seed); err != nil {
		return Seed{}, fmt.Errorf("seed: %w", err)
	}
	return seed, nil
}

// validateSeed rejects duplicate or non-positive pipeline ids and unknown
// status or schedule literals.
func validateSeed(seed Seed) error {
	seen := make(map[int]bool, len(seed.Pipelines))
	for i, p := range seed.Pipelines {
		if p.ID <= 0 {
			return fmt.Errorf("pipelines[%d]: id must be positive, got %d", i, p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("pipelines[%d]: duplicate id %d", i, p.ID)
		}
		seen[p.ID] = true

		switch p.Status {
		case types.StatusActive, types.StatusPaused, types.StatusDraft, types.StatusFailed:
		default:
			return fmt.Errorf("pipelines[%d]: status %q unknown: want active|paused|draft|failed", i, p.Status)
		}
		switch p.Schedule {
		case types.ScheduleHourly, types.ScheduleDaily, types.ScheduleManual:
		default:
			return fmt.Errorf("pipelines[%d]: schedule %q unknown: want hourly|daily|manual", i, p.Schedule)
		}
		if p.SuccessRate < 0 || p.SuccessRate > 100 {
			return fmt.Errorf("pipelines[%d]: success_rate %v out of range [0, 100]", i, p.SuccessRate)
		}
	}
	return nil
}
