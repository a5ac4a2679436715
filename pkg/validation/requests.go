package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxTeams          = 50
	MaxTeamNameLength = 100
	MaxSearchLength   = 256
	MaxTypeLength     = 100
	MaxNameLength     = 512
)

func init() {
	validate = validator.New()
}

// GraphRequest is the filter configuration posted by the UI to project
// the current snapshot
type GraphRequest struct {
	SelectedTeams []string `json:"selectedTeams" validate:"omitempty,max=50,dive,min=1,max=100"`
	DataSource    string   `json:"dataSource" validate:"omitempty,oneof=batch online combined"`
	SearchTerm    string   `json:"searchTerm" validate:"omitempty,max=256"`
	EntityType    string   `json:"entityType" validate:"omitempty,max=100"`
	RelationType  string   `json:"relationType" validate:"omitempty,max=100"`
	Layout        string   `json:"layout" validate:"omitempty,oneof=force circular"`
}

// EntityRequest is a request to create an entity through the gateway
type EntityRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=512"`
	EntityType   string   `json:"entityType" validate:"required,min=1,max=100"`
	Team         string   `json:"team" validate:"required,min=1,max=100"`
	Observations []string `json:"observations" validate:"omitempty,max=1000"`
}

// RelationRequest is a request to create a relation through the gateway
type RelationRequest struct {
	From         string `json:"from" validate:"required,min=1,max=512"`
	To           string `json:"to" validate:"required,min=1,max=512"`
	RelationType string `json:"relationType" validate:"required,min=1,max=100"`
}

// ValidateGraphRequest validates a graph projection request
func ValidateGraphRequest(req *GraphRequest) error {
	if req == nil {
		return errors.New("graph request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateEntityRequest validates an entity creation request
func ValidateEntityRequest(req *EntityRequest) error {
	if req == nil {
		return errors.New("entity request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateRelationRequest validates a relation creation request
func ValidateRelationRequest(req *RelationRequest) error {
	if req == nil {
		return errors.New("relation request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into user-facing messages
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: required field is missing", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s: exceeds maximum length %s", fe.Field(), fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s: below minimum length %s", fe.Field(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: must be one of [%s]", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
