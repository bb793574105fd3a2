package nextjs

import (
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

type (
	// buildOutput mirrors the build tool's output manifest
	// (.open-next/open-next.output.json).
	buildOutput struct {
		Version buildVersion           `json:"version"`
		Origins map[string]buildOrigin `json:"origins"`
	}

	buildVersion struct {
		OpenNext string `json:"openNext"`
	}

	buildOrigin struct {
		Type string `json:"type"`
		// function origin fields
		Handler   string `json:"handler"`
		Bundle    string `json:"bundle"`
		Streaming bool   `json:"streaming"`
		// s3 origin fields
		OriginPath string      `json:"originPath"`
		Copy       []buildCopy `json:"copy"`
	}

	buildCopy struct {
		From            string `json:"from"`
		To              string `json:"to"`
		Cached          bool   `json:"cached"`
		VersionedSubDir string `json:"versionedSubDir"`
	}
)

// outputSchema rejects manifests whose shape drifted before any field is
// interpreted, so version skew fails with a pointed message instead of a
// nil-field panic somewhere downstream.
const outputSchema = `{
	"type": "object",
	"required": ["version", "origins"],
	"properties": {
		"version": {
			"type": "object",
			"required": ["openNext"],
			"properties": {"openNext": {"type": "string"}}
		},
		"origins": {
			"type": "object",
			"properties": {
				"s3": {
					"type": "object",
					"required": ["copy"],
					"properties": {
						"copy": {
							"type": "array",
							"items": {
								"type": "object",
								"required": ["from", "to"],
								"properties": {
									"from": {"type": "string"},
									"to": {"type": "string"},
									"cached": {"type": "boolean"},
									"versionedSubDir": {"type": "string"}
								}
							}
						}
					}
				},
				"default": {
					"type": "object",
					"required": ["bundle", "handler"]
				}
			}
		}
	}
}`

var compiledSchema = jsonschema.MustCompileString("open-next.output.json", outputSchema)

func parseBuildOutput(path string) (*buildOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err,
			"reading %s; run the build tool (\"open-next build\") first", path)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if err := compiledSchema.Validate(raw); err != nil {
		return nil, errors.Wrapf(err, "build output %s has an unexpected shape; update the build tool", path)
	}

	var output buildOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &output, nil
}

// normalizeOriginPath strips the surrounding slashes the build tool sometimes
// leaves on copy destinations.
func normalizeOriginPath(p string) string {
	return strings.Trim(p, "/")
}
