package gateway

import (
	"errors"
	"fmt"

	"github.com/dd0wney/vkb-viewer/pkg/model"
)

// ErrUnavailable marks transport-level failures (connection refused,
// timeout). Distinct from a service-level error so callers can tell
// "the service said no" apart from "the service is unreachable".
// Neither is ever conflated with an empty result.
var ErrUnavailable = errors.New("query service unavailable")

// ServiceError is a non-2xx response from the query service
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("query service error (status %d): %s", e.StatusCode, e.Message)
}

// TeamInfo describes one team available on the query service
type TeamInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	EntityCount int    `json:"entityCount"`
}

// HealthStatus is the query service health report
type HealthStatus struct {
	Status  string `json:"status"`
	Storage bool   `json:"storage"`
	Search  bool   `json:"search"`
	Graph   bool   `json:"graph"`
}

// QueryOptions narrows an entity query
type QueryOptions struct {
	Team       string
	Source     string
	Types      []string
	Limit      int
	Offset     int
	SearchTerm string
}

// RelationQuery narrows a relation query
type RelationQuery struct {
	Team     string
	EntityID string
}

// teamsResponse is the wire shape of the team list
type teamsResponse struct {
	Available []TeamInfo `json:"available"`
}

// entitiesResponse is the wire shape of an entity query result
type entitiesResponse struct {
	Entities []*model.Entity `json:"entities"`
}

// relationsResponse is the wire shape of a relation query result
type relationsResponse struct {
	Relations []model.Relation `json:"relations"`
}

// errorResponse is the wire shape of a service error
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
