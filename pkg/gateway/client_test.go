package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/vkb-viewer/pkg/model"
)

func TestListTeams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/teams", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"available":[{"name":"coding","displayName":"Coding","entityCount":42}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	teams, err := client.ListTeams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "coding", teams[0].Name)
	assert.Equal(t, 42, teams[0].EntityCount)
}

func TestQueryEntitiesParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "coding", q.Get("team"))
		assert.Equal(t, "online", q.Get("source"))
		assert.Equal(t, "Service,Pattern", q.Get("types"))
		assert.Equal(t, "10", q.Get("limit"))
		w.Write([]byte(`{"entities":[{"name":"A","entityType":"Service"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	entities, err := client.QueryEntities(context.Background(), QueryOptions{
		Team:   "coding",
		Source: "online",
		Types:  []string{"Service", "Pattern"},
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "A", entities[0].Name)
}

func TestQueryRelations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/relations", r.URL.Path)
		assert.Equal(t, "coding", r.URL.Query().Get("team"))
		w.Write([]byte(`{"relations":[{"from":"A","to":"B","relationType":"calls"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	relations, err := client.QueryRelations(context.Background(), RelationQuery{Team: "coding"})
	require.NoError(t, err)
	require.Len(t, relations, 1)
	assert.Equal(t, "calls", relations[0].RelationType)
}

func TestUnreachableServiceReturnsErrUnavailable(t *testing.T) {
	// A closed listener: connection refused
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL)
	_, err := client.ListTeams(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable), "network failure must wrap ErrUnavailable, got %v", err)

	var svcErr *ServiceError
	assert.False(t, errors.As(err, &svcErr), "network failure must not look like a service error")
}

func TestServiceErrorCarriesStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad team","message":"team must not be empty"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.ListTeams(context.Background())
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Equal(t, "team must not be empty", svcErr.Message)
	assert.False(t, errors.Is(err, ErrUnavailable), "service error must not look unreachable")
}

func TestEmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entities":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	entities, err := client.QueryEntities(context.Background(), QueryOptions{Team: "empty-team"})
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestCreateEntity(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.CreateEntity(context.Background(), &model.Entity{Name: "A", EntityType: "Service"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/entities", gotPath)
}

func TestDeleteEntityEscapesName(t *testing.T) {
	var gotPath, gotRawPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRawPath = r.URL.RawPath
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "coding", r.URL.Query().Get("team"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.DeleteEntity(context.Background(), "name/with slash", "coding")
	require.NoError(t, err)
	assert.Equal(t, "/api/entities/name/with slash", gotPath)
	assert.Equal(t, "/api/entities/name%2Fwith%20slash", gotRawPath)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy","storage":true,"search":true,"graph":false}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)
	assert.True(t, status.Storage)
	assert.False(t, status.Graph)
}
