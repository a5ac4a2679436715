package validation

import (
	"strings"
	"testing"
)

func TestValidateGraphRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *GraphRequest
		wantErr bool
	}{
		{"nil request", nil, true},
		{"empty request is valid", &GraphRequest{}, false},
		{"full valid request", &GraphRequest{
			SelectedTeams: []string{"coding"},
			DataSource:    "batch",
			SearchTerm:    "auth",
			EntityType:    "Service",
			RelationType:  "calls",
			Layout:        "force",
		}, false},
		{"bad data source", &GraphRequest{DataSource: "filesystem"}, true},
		{"bad layout", &GraphRequest{Layout: "spiral"}, true},
		{"search term too long", &GraphRequest{SearchTerm: strings.Repeat("x", 257)}, true},
		{"too many teams", &GraphRequest{SelectedTeams: make([]string, 51)}, true},
		{"empty team name", &GraphRequest{SelectedTeams: []string{""}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// a slice of empty strings still needs valid members except
			// where the test targets that rule
			if tt.name == "too many teams" {
				for i := range tt.req.SelectedTeams {
					tt.req.SelectedTeams[i] = "t"
				}
			}
			err := ValidateGraphRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEntityRequest(t *testing.T) {
	valid := &EntityRequest{Name: "A", EntityType: "Service", Team: "coding"}
	if err := ValidateEntityRequest(valid); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	tests := []struct {
		name string
		req  *EntityRequest
	}{
		{"nil", nil},
		{"missing name", &EntityRequest{EntityType: "Service", Team: "t"}},
		{"missing type", &EntityRequest{Name: "A", Team: "t"}},
		{"missing team", &EntityRequest{Name: "A", EntityType: "Service"}},
		{"name too long", &EntityRequest{Name: strings.Repeat("x", 513), EntityType: "Service", Team: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateEntityRequest(tt.req); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidateRelationRequest(t *testing.T) {
	valid := &RelationRequest{From: "A", To: "B", RelationType: "calls"}
	if err := ValidateRelationRequest(valid); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	if err := ValidateRelationRequest(&RelationRequest{From: "A", To: "B"}); err == nil {
		t.Error("missing relation type should fail")
	}
	if err := ValidateRelationRequest(nil); err == nil {
		t.Error("nil request should fail")
	}
}

func TestValidationErrorMessagesAreReadable(t *testing.T) {
	err := ValidateEntityRequest(&EntityRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "required") {
		t.Errorf("message should name the failed rule: %q", msg)
	}
	if !strings.Contains(msg, "Name") {
		t.Errorf("message should name the field: %q", msg)
	}
}
