package model

import (
	"encoding/json"
	"testing"
)

func TestObservationUnmarshalPlainString(t *testing.T) {
	var o Observation
	if err := json.Unmarshal([]byte(`"uses the event bus"`), &o); err != nil {
		t.Fatalf("unmarshal plain string: %v", err)
	}
	if o.Content != "uses the event bus" {
		t.Errorf("content = %q, want %q", o.Content, "uses the event bus")
	}
	if o.Type != "" || o.Date != "" {
		t.Errorf("plain string should leave type/date empty, got %q/%q", o.Type, o.Date)
	}
}

func TestObservationUnmarshalStructured(t *testing.T) {
	var o Observation
	data := `{"content":"deployed to prod","type":"event","date":"2025-11-02"}`
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		t.Fatalf("unmarshal structured: %v", err)
	}
	if o.Content != "deployed to prod" {
		t.Errorf("content = %q", o.Content)
	}
	if o.Type != "event" {
		t.Errorf("type = %q", o.Type)
	}
	if o.Date != "2025-11-02" {
		t.Errorf("date = %q", o.Date)
	}
}

func TestObservationUnmarshalInvalid(t *testing.T) {
	var o Observation
	if err := json.Unmarshal([]byte(`42`), &o); err == nil {
		t.Error("expected error for numeric observation")
	}
}

func TestParseSourceKind(t *testing.T) {
	tests := []struct {
		input   string
		want    SourceKind
		wantErr bool
	}{
		{"batch", SourceBatch, false},
		{"online", SourceOnline, false},
		{"combined", "", true},
		{"", "", true},
		{"BATCH", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSourceKind(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSourceKind(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSourceKind(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSourceKind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEntityTypePredicates(t *testing.T) {
	sys := &Entity{Name: "Sys", EntityType: TypeSystem}
	proj := &Entity{Name: "Proj", EntityType: TypeProject}
	pattern := &Entity{Name: "Pat", EntityType: "Pattern"}

	if !sys.IsSystem() || sys.IsProject() {
		t.Error("System entity misclassified")
	}
	if !proj.IsProject() || proj.IsSystem() {
		t.Error("Project entity misclassified")
	}
	if pattern.IsSystem() || pattern.IsProject() {
		t.Error("Pattern entity misclassified")
	}
}

func TestEntityClone(t *testing.T) {
	original := &Entity{
		Name:       "svc-auth",
		EntityType: "Service",
		Observations: []Observation{
			{Content: "handles login"},
		},
		Provenance: Provenance{SourceKind: SourceBatch, Team: "platform"},
	}

	clone := original.Clone()
	if clone == original {
		t.Fatal("Clone returned the same pointer")
	}
	clone.Observations[0].Content = "mutated"
	if original.Observations[0].Content != "handles login" {
		t.Error("mutating the clone changed the original's observations")
	}
	if clone.Name != original.Name || clone.Provenance != original.Provenance {
		t.Error("clone fields do not match original")
	}
}

func TestRelationTouchesAndOther(t *testing.T) {
	r := Relation{From: "A", To: "B", RelationType: "depends_on"}

	if !r.Touches("A") || !r.Touches("B") {
		t.Error("Touches should be true for both endpoints")
	}
	if r.Touches("C") {
		t.Error("Touches should be false for non-endpoints")
	}
	if got := r.Other("A"); got != "B" {
		t.Errorf("Other(A) = %q, want B", got)
	}
	if got := r.Other("B"); got != "A" {
		t.Errorf("Other(B) = %q, want A", got)
	}
	if got := r.Other("C"); got != "" {
		t.Errorf("Other(C) = %q, want empty", got)
	}
}
