package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dd0wney/vkb-viewer/pkg/assembly"
	"github.com/dd0wney/vkb-viewer/pkg/filter"
	"github.com/dd0wney/vkb-viewer/pkg/gateway"
	"github.com/dd0wney/vkb-viewer/pkg/ingest"
	"github.com/dd0wney/vkb-viewer/pkg/logging"
	"github.com/dd0wney/vkb-viewer/pkg/model"
	"github.com/dd0wney/vkb-viewer/pkg/validation"
	"github.com/dd0wney/vkb-viewer/pkg/visualization"
)

// Team management

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	if s.gw != nil {
		teams, err := s.gw.ListTeams(r.Context())
		if err != nil {
			s.respondGatewayError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]any{"available": teams})
		return
	}

	// Batch mode: derive the team list from the loaded snapshot
	snap := s.holder.Current()
	if snap == nil {
		s.respondJSON(w, http.StatusOK, map[string]any{"available": []gateway.TeamInfo{}})
		return
	}

	available := make([]gateway.TeamInfo, 0)
	counts := make(map[string]int)
	for _, e := range snap.Entities() {
		if e.Provenance.Team != "" {
			counts[e.Provenance.Team]++
		}
	}
	for _, team := range snap.Teams() {
		available = append(available, gateway.TeamInfo{
			Name:        team,
			DisplayName: titleCase(team),
			EntityCount: counts[team],
		})
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"available": available})
}

func (s *Server) handleSetTeams(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Teams []string `json:"teams"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if s.prefs != nil {
		if err := s.prefs.SetTeams(req.Teams); err != nil {
			s.respondError(w, http.StatusInternalServerError, "failed to persist team selection", err.Error())
			return
		}
	}

	s.logger.Info("team selection updated", logging.Count(len(req.Teams)))
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"teams":   req.Teams,
	})
}

func (s *Server) handleCurrentTeams(w http.ResponseWriter, r *http.Request) {
	teams := []string{}
	if s.prefs != nil {
		teams = s.prefs.Get().SelectedTeams
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	dataSource := string(filter.SourceCombined)
	teams := []string{}
	if s.prefs != nil {
		p := s.prefs.Get()
		if p.DataSource != "" {
			dataSource = p.DataSource
		}
		teams = p.SelectedTeams
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"dataSource":    dataSource,
		"knowledgeView": strings.Join(teams, ","),
		"version":       s.version,
	})
}

// Data queries

func (s *Server) handleQueryEntities(w http.ResponseWriter, r *http.Request) {
	if s.gw != nil {
		opts := gateway.QueryOptions{
			Team:       r.URL.Query().Get("team"),
			Source:     r.URL.Query().Get("source"),
			SearchTerm: r.URL.Query().Get("searchTerm"),
		}
		if types := r.URL.Query().Get("types"); types != "" {
			opts.Types = strings.Split(types, ",")
		}
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			opts.Limit = limit
		}
		if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
			opts.Offset = offset
		}

		entities, err := s.gw.QueryEntities(r.Context(), opts)
		if err != nil {
			s.respondGatewayError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]any{"entities": entities})
		return
	}

	snap := s.holder.Current()
	if snap == nil {
		s.respondWaiting(w)
		return
	}

	entities := snap.Entities()
	if team := r.URL.Query().Get("team"); team != "" {
		entities = filter.ByTeam(entities, []string{team})
	}
	if source := r.URL.Query().Get("source"); source != "" {
		entities = filter.BySource(entities, filter.ParseSource(source))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"entities": entities})
}

func (s *Server) handleQueryRelations(w http.ResponseWriter, r *http.Request) {
	if s.gw != nil {
		relations, err := s.gw.QueryRelations(r.Context(), gateway.RelationQuery{
			Team:     r.URL.Query().Get("team"),
			EntityID: r.URL.Query().Get("entityId"),
		})
		if err != nil {
			s.respondGatewayError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]any{"relations": relations})
		return
	}

	snap := s.holder.Current()
	if snap == nil {
		s.respondWaiting(w)
		return
	}

	relations := snap.Relations()
	if entityID := r.URL.Query().Get("entityId"); entityID != "" {
		touching := make([]model.Relation, 0)
		for _, rel := range relations {
			if rel.Touches(entityID) {
				touching = append(touching, rel)
			}
		}
		relations = touching
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"relations": relations})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.holder.Current()
	if snap == nil {
		s.respondWaiting(w)
		return
	}

	origin, loadedAt := s.holder.Info()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"entities":      snap.EntityCount(),
		"relations":     snap.RelationCount(),
		"teams":         snap.Teams(),
		"entityTypes":   snap.EntityTypes(),
		"relationTypes": snap.RelationTypes(),
		"origin":        origin,
		"loadedAt":      loadedAt,
	})
}

// Snapshot lifecycle

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	opts := ingest.Options{
		DefaultTeam: r.URL.Query().Get("team"),
		SourceTag:   r.URL.Query().Get("source"),
		Logger:      s.logger,
	}

	result, err := ingest.ParseLines(r.Body, opts)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload", err.Error())
		return
	}

	snap := result.Snapshot()
	s.holder.Replace(snap, "upload")
	s.metrics.RecordSnapshotLoad("upload", snap.EntityCount(), snap.RelationCount(), result.SkippedLines)

	s.logger.Info("snapshot replaced from upload",
		logging.Int("entities", snap.EntityCount()),
		logging.Int("relations", snap.RelationCount()),
		logging.Int("skipped", result.SkippedLines),
	)
	s.respondJSON(w, http.StatusOK, map[string]any{
		"entities":  snap.EntityCount(),
		"relations": snap.RelationCount(),
		"skipped":   result.SkippedLines,
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.gw == nil {
		s.respondError(w, http.StatusServiceUnavailable, "query service not configured", "reload requires online mode")
		return
	}

	var req struct {
		Teams []string `json:"teams"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // empty body falls back to prefs
	}
	teams := req.Teams
	if len(teams) == 0 && s.prefs != nil {
		teams = s.prefs.Get().SelectedTeams
	}

	entities := make([]*model.Entity, 0)
	relations := make([]model.Relation, 0)
	for _, team := range teams {
		// A failed fetch must not overwrite the previous good snapshot
		teamEntities, err := s.gw.QueryEntities(r.Context(), gateway.QueryOptions{Team: team})
		if err != nil {
			s.respondGatewayError(w, err)
			return
		}
		teamRelations, err := s.gw.QueryRelations(r.Context(), gateway.RelationQuery{Team: team})
		if err != nil {
			s.respondGatewayError(w, err)
			return
		}
		entities = append(entities, teamEntities...)
		relations = append(relations, teamRelations...)
	}

	snap := model.NewSnapshot(entities, relations)
	s.holder.Replace(snap, "gateway")
	s.metrics.RecordSnapshotLoad("gateway", snap.EntityCount(), snap.RelationCount(), 0)

	s.logger.Info("snapshot replaced from query service",
		logging.Int("entities", snap.EntityCount()),
		logging.Int("relations", snap.RelationCount()),
		logging.Count(len(teams)),
	)
	s.respondJSON(w, http.StatusOK, map[string]any{
		"entities":  snap.EntityCount(),
		"relations": snap.RelationCount(),
		"teams":     teams,
	})
}

// Projection

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req validation.GraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateGraphRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid filter configuration", err.Error())
		return
	}

	snap := s.holder.Current()
	if snap == nil {
		s.respondWaiting(w)
		return
	}

	cfg := filter.Config{
		SelectedTeams: req.SelectedTeams,
		DataSource:    filter.ParseSource(req.DataSource),
		SearchTerm:    req.SearchTerm,
		EntityType:    filter.ParseTypeFilter(req.EntityType),
		RelationType:  filter.ParseTypeFilter(req.RelationType),
	}

	start := time.Now()
	result := filter.Apply(snap, cfg, s.filterOpts)
	graph := assembly.Build(result.Entities, result.Relations)
	s.metrics.RecordPipelineRun(time.Since(start), len(graph.Nodes), len(graph.Edges), graph.Skipped, graph.Dangling)

	response := map[string]any{
		"nodes": graph.Nodes,
		"edges": graph.Edges,
		"stats": map[string]any{
			"nodeCount": len(graph.Nodes),
			"edgeCount": len(graph.Edges),
			"skipped":   graph.Skipped,
			"dangling":  graph.Dangling,
		},
	}

	if req.Layout != "" {
		response["positions"] = s.layoutPositions(req.Layout, graph)
	}

	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) layoutPositions(name string, graph *assembly.Graph) map[string]visualization.Position {
	config := &visualization.LayoutConfig{Width: 1200, Height: 800}
	var layout visualization.Layout
	switch name {
	case "circular":
		layout = visualization.NewCircularLayout(config)
	default:
		layout = visualization.NewForceDirectedLayout(config)
	}
	return layout.ComputeLayout(graph)
}

func (s *Server) handleWhatsNew(w http.ResponseWriter, r *http.Request) {
	if s.prefs == nil {
		s.respondJSON(w, http.StatusOK, map[string]any{"changed": []string{}})
		return
	}
	snap := s.holder.Current()
	if snap == nil {
		s.respondWaiting(w)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"changed": s.prefs.WhatsNew(snap)})
}

func (s *Server) handleUpdateBaseline(w http.ResponseWriter, r *http.Request) {
	if s.prefs == nil {
		s.respondError(w, http.StatusServiceUnavailable, "preferences not configured", "")
		return
	}
	snap := s.holder.Current()
	if snap == nil {
		s.respondWaiting(w)
		return
	}
	if err := s.prefs.UpdateBaseline(snap); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to persist baseline", err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "entities": snap.EntityCount()})
}

// Mutations (undo path)

func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	if s.gw == nil {
		s.respondError(w, http.StatusServiceUnavailable, "query service not configured", "")
		return
	}

	var req validation.EntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateEntityRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid entity", err.Error())
		return
	}

	entity := &model.Entity{
		Name:       req.Name,
		EntityType: req.EntityType,
		Provenance: model.Provenance{Team: req.Team, SourceKind: model.SourceOnline},
	}
	for _, o := range req.Observations {
		entity.Observations = append(entity.Observations, model.Observation{Content: o})
	}

	if err := s.gw.CreateEntity(r.Context(), entity); err != nil {
		s.respondGatewayError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"success": true, "name": req.Name})
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	if s.gw == nil {
		s.respondError(w, http.StatusServiceUnavailable, "query service not configured", "")
		return
	}

	name := r.PathValue("name")
	team := r.URL.Query().Get("team")
	if err := s.gw.DeleteEntity(r.Context(), name, team); err != nil {
		s.respondGatewayError(w, err)
		return
	}

	s.logger.Info("entity deleted", logging.EntityName(name), logging.Team(team))
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "name": name})
}

func (s *Server) handleCreateRelation(w http.ResponseWriter, r *http.Request) {
	if s.gw == nil {
		s.respondError(w, http.StatusServiceUnavailable, "query service not configured", "")
		return
	}

	var req validation.RelationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateRelationRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid relation", err.Error())
		return
	}

	rel := model.Relation{From: req.From, To: req.To, RelationType: req.RelationType}
	if err := s.gw.CreateRelation(r.Context(), rel); err != nil {
		s.respondGatewayError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"success": true})
}

// Operational

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := s.checker.Check()
	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, response)
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": s.version,
		"uptime":  time.Since(s.startTime).String(),
	})
}

// Helpers

// respondWaiting reports the distinct "no snapshot loaded yet" state so
// the UI can show waiting-for-data instead of an empty graph
func (s *Server) respondWaiting(w http.ResponseWriter) {
	s.respondJSON(w, http.StatusConflict, errorBody{
		Error: "no snapshot loaded",
		State: "waiting",
	})
}

// respondGatewayError maps gateway failures onto distinct statuses:
// unreachable service vs service-reported error
func (s *Server) respondGatewayError(w http.ResponseWriter, err error) {
	var svcErr *gateway.ServiceError
	switch {
	case errors.Is(err, gateway.ErrUnavailable):
		s.respondJSON(w, http.StatusGatewayTimeout, errorBody{
			Error:   "query service unreachable",
			Message: err.Error(),
			State:   "failed",
		})
	case errors.As(err, &svcErr):
		s.respondJSON(w, http.StatusBadGateway, errorBody{
			Error:   "query service error",
			Message: svcErr.Message,
			State:   "failed",
		})
	default:
		s.respondJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "internal error",
			Message: err.Error(),
			State:   "failed",
		})
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
