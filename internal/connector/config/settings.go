package config

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/syncflow/syncflow/internal/common/apperrors"
)

// Settings carries the source connection settings for a sync run. JSON field
// names match the configuration.json mapping handed to hosted connector
// runtimes, so a file written for one loads here unchanged.
type Settings struct {
	WorkspaceURL  string `json:"workspace_url"`
	AccessToken   string `json:"access_token"`
	CatalogFilter string `json:"catalog_filter,omitempty"`
}

var (
	ErrInvalidSettings apperrors.Error = apperrors.New("invalid connector settings").SetStatusCode(http.StatusBadRequest)
	ErrParseSettings   apperrors.Error = ErrInvalidSettings.New("unable to parse settings")
	ErrSchemaViolation apperrors.Error = ErrInvalidSettings.New("settings do not match schema")
	ErrMissingSetting  apperrors.Error = ErrInvalidSettings.New("missing required setting")
)

const settingsSchema = `{
	"type": "object",
	"required": ["workspace_url", "access_token"],
	"properties": {
		"workspace_url": {"type": "string", "minLength": 1, "pattern": "^https?://"},
		"access_token": {"type": "string", "minLength": 1},
		"catalog_filter": {"type": "string"}
	}
}`

var compiledSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("settings.json", bytes.NewReader([]byte(settingsSchema))); err != nil {
		panic(err)
	}
	schema, err := compiler.Compile("settings.json")
	if err != nil {
		panic(err)
	}
	compiledSchema = schema
}

// LoadSettings parses a configuration.json payload and validates it against
// the settings schema before it gets anywhere near the network.
func LoadSettings(data []byte) (Settings, apperrors.Error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Settings{}, ErrParseSettings.Err(err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return Settings{}, ErrSchemaViolation.Msg(err.Error())
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, ErrParseSettings.Err(err)
	}
	return s, nil
}

// Validate checks settings constructed in code, for example from the daemon
// config file, the same way LoadSettings checks a JSON payload.
func (s Settings) Validate() apperrors.Error {
	if s.WorkspaceURL == "" {
		return ErrMissingSetting.Msg("workspace_url is required")
	}
	u, err := url.Parse(s.WorkspaceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidSettings.Msg("workspace_url must be an http or https URL")
	}
	if s.AccessToken == "" {
		return ErrMissingSetting.Msg("access_token is required")
	}
	return nil
}

// AllowedCatalogs returns the catalog allow-list parsed from CatalogFilter.
// An empty filter returns nil, meaning every catalog is synced. Entries are
// split on commas verbatim; surrounding whitespace stays part of the name.
func (s Settings) AllowedCatalogs() []string {
	if s.CatalogFilter == "" {
		return nil
	}
	return strings.Split(s.CatalogFilter, ",")
}
