// Package api implements the HTTP REST API for pipeline-server.
//
// New(repo, src) returns an http.Handler that serves:
//
//	GET  /                              API metadata and route list
//	GET  /api/actuator/health           always UP
//	GET  /api/pipelines                 all pipelines, insertion order
//	POST /api/pipelines                 create a draft pipeline (201)
//	GET  /api/pipelines/{id}            single pipeline; 404 if unknown
//	GET  /api/pipelines/{id}/status     id and status only
//	GET  /api/schemas                   registered schemas
//	GET  /api/quality-checks            registered quality checks
//	GET  /api/metrics/pipeline          aggregate pipeline metrics
//	GET  /api/dashboard/stats           dashboard counters
//	GET  /api/executions/recent         one execution per pipeline that has run
//	GET  /api/quality/trends            seven days of simulated quality scores
//	GET  /api/system/metrics            simulated resource usage
//	GET  /api/alerts                    alerts
//	GET  /metrics                       Prometheus exposition of the aggregates
//
// JSON endpoints respond with Content-Type: application/json and report
// errors as {"error": "..."}. Unsupported methods get 405, unknown paths 404.
// No external HTTP framework is used.
package api
