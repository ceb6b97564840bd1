// Package validate checks request payloads against embedded JSON schemas.
package validate

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Validator holds the compiled schemas for the payload kinds the API accepts.
type Validator struct {
	developerProfile *jsonschema.Schema
	project          *jsonschema.Schema
}

func New() (*Validator, error) {
	dev, err := compile("schemas/developer_profile.json")
	if err != nil {
		return nil, err
	}
	project, err := compile("schemas/project.json")
	if err != nil {
		return nil, err
	}
	return &Validator{developerProfile: dev, project: project}, nil
}

func compile(path string) (*jsonschema.Schema, error) {
	b, err := schemaFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(b, rs); err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", path, err)
	}
	return rs, nil
}

// DeveloperProfile validates a developer profile update payload.
func (v *Validator) DeveloperProfile(ctx context.Context, payload []byte) error {
	return check(ctx, v.developerProfile, payload)
}

// Project validates a project create/update payload.
func (v *Validator) Project(ctx context.Context, payload []byte) error {
	return check(ctx, v.project, payload)
}

func check(ctx context.Context, rs *jsonschema.Schema, payload []byte) error {
	keyErrs, err := rs.ValidateBytes(ctx, payload)
	if err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if len(keyErrs) > 0 {
		msgs := make([]string, 0, len(keyErrs))
		for _, ke := range keyErrs {
			msgs = append(msgs, ke.Error())
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
