package ingest

import (
	"testing"

	"github.com/dd0wney/vkb-viewer/pkg/model"
)

func TestClassifySource(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		metadata map[string]string
		want     model.SourceKind
	}{
		{"shared file marker", "shared-memory-coding.json", nil, model.SourceBatch},
		{"database tag", "database", nil, model.SourceOnline},
		{"database tag with suffix", "database:primary", nil, model.SourceOnline},
		{"database tag uppercase", "DATABASE", nil, model.SourceOnline},
		{"metadata online marker", "some-file.json", map[string]string{"source": "online"}, model.SourceOnline},
		{"metadata online marker case insensitive", "", map[string]string{"source": "Online"}, model.SourceOnline},
		{"metadata overrides tag", "shared-memory-x.json", map[string]string{"source": "online"}, model.SourceOnline},
		{"metadata with other source", "", map[string]string{"source": "import"}, model.SourceBatch},
		{"no marker defaults to batch", "export.json", nil, model.SourceBatch},
		{"empty everything defaults to batch", "", nil, model.SourceBatch},
		{"database substring only is not online", "my-database-notes", nil, model.SourceBatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySource(tt.tag, tt.metadata); got != tt.want {
				t.Errorf("ClassifySource(%q, %v) = %q, want %q", tt.tag, tt.metadata, got, tt.want)
			}
		})
	}
}
