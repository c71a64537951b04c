// Package store holds the pipeline catalog in memory: pipelines, schemas,
// quality checks and alerts. Handlers reach it through the Repository
// interface so a persistent implementation can replace it later.
package store
