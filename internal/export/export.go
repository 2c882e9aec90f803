package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format is an export file format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DefaultBaseName is the export file name without extension
const DefaultBaseName = "skill-settings"

// Formats lists the supported formats
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML}

// ParseFormat accepts a format name, case-insensitive. "yml" means yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want json, yaml or toml)", s)
}

// FileName returns the default output file for f
func (f Format) FileName() string {
	return DefaultBaseName + "." + string(f)
}

// Write serializes skills as a list of {id, settings} entries
func Write(w io.Writer, skills []api.Skill, f Format) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatJSON:
		data, err = marshalJSON(skills)
	case FormatYAML:
		data, err = marshalYAML(skills)
	case FormatTOML:
		data, err = marshalTOML(skills)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", f, err)
	}
	_, err = w.Write(data)
	return err
}

func entry(s api.Skill) settings.Value {
	obj := settings.NewObject().
		Set("id", settings.String(s.ID)).
		Set("settings", s.Settings)
	return settings.FromObject(obj)
}

func marshalJSON(skills []api.Skill) ([]byte, error) {
	items := make([]settings.Value, len(skills))
	for i, s := range skills {
		items[i] = entry(s)
	}
	data, err := settings.MarshalIndent(settings.Array(items...), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func marshalYAML(skills []api.Skill) ([]byte, error) {
	items := make([]any, len(skills))
	for i, s := range skills {
		items[i] = toYAML(entry(s))
	}
	return yaml.Marshal(items)
}

// toYAML keeps object key order through yaml.MapSlice
func toYAML(v settings.Value) any {
	switch v.Kind() {
	case settings.KindObject:
		out := make(yaml.MapSlice, 0, v.Len())
		v.Pairs(func(key string, child settings.Value) {
			out = append(out, yaml.MapItem{Key: key, Value: toYAML(child)})
		})
		return out
	case settings.KindArray:
		items := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toYAML(item)
		}
		return out
	}
	return settings.ToAny(v)
}

func marshalTOML(skills []api.Skill) ([]byte, error) {
	items := make([]any, len(skills))
	for i, s := range skills {
		items[i] = map[string]any{
			"id":       s.ID,
			"settings": dropNulls(settings.ToAny(s.Settings)),
		}
	}
	return toml.Marshal(map[string]any{"skills": items})
}

// dropNulls removes null members since TOML has no null
func dropNulls(x any) any {
	switch t := x.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			if v == nil {
				continue
			}
			out[k] = dropNulls(v)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, v := range t {
			if v == nil {
				continue
			}
			out = append(out, dropNulls(v))
		}
		return out
	}
	return x
}
