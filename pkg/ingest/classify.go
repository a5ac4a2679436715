package ingest

import (
	"strings"

	"github.com/dd0wney/vkb-viewer/pkg/model"
)

// Origin markers recognized by the source classification rule. Batch
// data historically arrives through shared memory-export files; online
// data comes from the live query service.
const (
	batchFilePrefix  = "shared-memory-"
	onlineOriginTag  = "database"
	onlineMetadataOK = "online"
)

// ClassifySource resolves the source kind of an entity once, at
// ingestion time. Consumers must use the resolved Provenance.SourceKind
// and never re-derive it from tags.
//
// An entity is online if its origin tag names the live query service or
// its metadata explicitly marks it online; it is batch if its tag starts
// with the shared-file marker or carries no online marker at all.
func ClassifySource(tag string, metadata map[string]string) model.SourceKind {
	if metadata != nil {
		if v, ok := metadata["source"]; ok && strings.EqualFold(v, onlineMetadataOK) {
			return model.SourceOnline
		}
	}

	lower := strings.ToLower(tag)
	if lower == onlineOriginTag || strings.HasPrefix(lower, onlineOriginTag+":") {
		return model.SourceOnline
	}
	if strings.HasPrefix(lower, batchFilePrefix) {
		return model.SourceBatch
	}

	// No explicit online marker: manually curated by default
	return model.SourceBatch
}
