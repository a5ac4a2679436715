package ingest

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/dd0wney/vkb-viewer/pkg/logging"
	"github.com/dd0wney/vkb-viewer/pkg/model"
)

// Result holds one parsed NDJSON load. SkippedLines counts records that
// failed to parse or were missing required fields; a load never aborts
// for a bad record.
type Result struct {
	Entities     []*model.Entity
	Relations    []model.Relation
	SkippedLines int
}

// Snapshot builds an immutable snapshot from the parsed records
func (r *Result) Snapshot() *model.Snapshot {
	return model.NewSnapshot(r.Entities, r.Relations)
}

// rawRecord covers both record shapes of the upload format. A relation
// is also recognized without an explicit "type" field when from, to and
// relationType are all present.
type rawRecord struct {
	Type         string              `json:"type"`
	Name         string              `json:"name"`
	EntityType   string              `json:"entityType"`
	Observations []model.Observation `json:"observations"`
	From         string              `json:"from"`
	To           string              `json:"to"`
	RelationType string              `json:"relationType"`
	Team         string              `json:"team"`
	Source       string              `json:"source"`
	Metadata     map[string]string   `json:"metadata"`
}

// Options controls ingestion defaults for records that carry no
// explicit provenance
type Options struct {
	DefaultTeam string
	// SourceTag is the origin marker of the whole load (e.g. the
	// uploaded file name); used by the classification fallback when a
	// record has no explicit source.
	SourceTag string
	Logger    logging.Logger
}

// ParseLines reads newline-delimited JSON records. Lines that fail to
// parse are skipped with a logged warning.
func ParseLines(r io.Reader, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	result := &Result{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec rawRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			result.SkippedLines++
			log.Warn("skipping malformed record",
				logging.Line(lineNo),
				logging.Error(err),
			)
			continue
		}

		switch {
		case rec.Type == "entity":
			if rec.Name == "" {
				result.SkippedLines++
				log.Warn("skipping entity without name", logging.Line(lineNo))
				continue
			}
			result.Entities = append(result.Entities, entityFromRecord(rec, opts))

		case rec.Type == "relation" || (rec.Type == "" && isRelationShape(rec)):
			result.Relations = append(result.Relations, model.Relation{
				From:         rec.From,
				To:           rec.To,
				RelationType: rec.RelationType,
			})

		default:
			result.SkippedLines++
			log.Warn("skipping unrecognized record",
				logging.Line(lineNo),
				logging.String("record_type", rec.Type),
			)
		}
	}
	if err := scanner.Err(); err != nil {
		return result, err
	}

	log.Info("parsed upload",
		logging.Int("entities", len(result.Entities)),
		logging.Int("relations", len(result.Relations)),
		logging.Int("skipped", result.SkippedLines),
	)
	return result, nil
}

func isRelationShape(rec rawRecord) bool {
	return rec.From != "" && rec.To != "" && rec.RelationType != ""
}

func entityFromRecord(rec rawRecord, opts Options) *model.Entity {
	team := rec.Team
	if team == "" {
		team = opts.DefaultTeam
	}
	tag := rec.Source
	if tag == "" {
		tag = opts.SourceTag
	}

	return &model.Entity{
		Name:         rec.Name,
		EntityType:   rec.EntityType,
		Observations: rec.Observations,
		Provenance: model.Provenance{
			SourceKind: ClassifySource(tag, rec.Metadata),
			Team:       team,
		},
	}
}
