package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/config"
	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/egoavara/ovos-settings/internal/store"
	"github.com/egoavara/ovos-settings/internal/syncer"
	"github.com/fatih/color"
)

var (
	successStyle = color.New(color.FgGreen)
	errorStyle   = color.New(color.FgRed)
	warnStyle    = color.New(color.FgYellow)
	infoStyle    = color.New(color.FgCyan)
	boldStyle    = color.New(color.Bold)
)

// serverBase returns the --server flag or the configured backend
func serverBase() string {
	if serverURL != "" {
		return serverURL
	}
	return config.Get().Server
}

// newClient builds an api client with the stored credential header
func newClient() (*api.Client, error) {
	return api.New(serverBase(), api.WithAuthHeader(config.Get().AuthHeader))
}

// openSkill fetches one skill and loads it into a fresh synchronizer. With
// allowMissing an unknown skill starts as an empty object.
func openSkill(ctx context.Context, id string, allowMissing bool) (*syncer.Synchronizer, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	skill, err := client.GetSkill(ctx, id)
	switch {
	case err != nil && allowMissing && api.IsNotFound(err):
		skill = api.Skill{ID: id, Settings: settings.EmptyObject()}
	case err != nil:
		return nil, err
	}
	s := syncer.New(store.New(), client)
	s.Load(id, skill.Settings)
	return s, nil
}

// parseKind maps a --type flag to a value kind. "json" is reported through
// isJSON since it is not a kind of its own.
func parseKind(name string) (kind settings.Kind, isJSON bool, err error) {
	switch strings.ToLower(name) {
	case "string", "str", "text":
		return settings.KindString, false, nil
	case "number", "num", "float", "int":
		return settings.KindNumber, false, nil
	case "boolean", "bool":
		return settings.KindBool, false, nil
	case "object":
		return settings.KindObject, false, nil
	case "array", "list":
		return settings.KindArray, false, nil
	case "null":
		return settings.KindNull, false, nil
	case "json":
		return settings.KindNull, true, nil
	}
	return settings.KindNull, false, fmt.Errorf("unknown type %q (string, number, boolean, object, array, null, json)", name)
}

// readJSONArg reads a JSON document from an argument: inline text, @file or
// "-" for stdin
func readJSONArg(arg string, stdin io.Reader) (settings.Value, error) {
	var data []byte
	var err error
	switch {
	case arg == "-":
		data, err = io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		data, err = os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		data = []byte(arg)
	}
	if err != nil {
		return settings.Value{}, err
	}
	return settings.Parse(data)
}

func printJSON(w io.Writer, v settings.Value) error {
	data, err := settings.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printDiff shows what a change would do without sending it
func printDiff(w io.Writer, skill string, before, after settings.Value) error {
	diff, err := settings.Diff(before, after, skill+" (server)", skill+" (changed)")
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Fprintln(w, warnStyle.Sprint("no changes"))
		return nil
	}
	fmt.Fprint(w, diff)
	fmt.Fprintln(w, warnStyle.Sprint("\nDry run - nothing was saved"))
	return nil
}
