package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/config"
	"github.com/egoavara/ovos-settings/internal/editor"
	"github.com/egoavara/ovos-settings/internal/server"
	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "ovos-settings-cmd")
	if err != nil {
		panic(err)
	}
	os.Setenv("OVOS_SETTINGS_CONFIG", filepath.Join(dir, "config.json"))
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

const alarmID = "skill-alarm.jarbas"

type env struct {
	root string
	url  string
}

func newEnv(t *testing.T, opts server.Options) env {
	t.Helper()
	if opts.Root == "" {
		opts.Root = t.TempDir()
	}
	srv, err := server.New(opts)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	require.NoError(t, config.SetAuthHeader(""))
	return env{root: opts.Root, url: ts.URL}
}

func (e env) writeSkill(t *testing.T, id, content string) {
	t.Helper()
	dir := filepath.Join(e.root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte(content), 0o644))
}

func (e env) readSkill(t *testing.T, id string) settings.Value {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(e.root, id, "settings.json"))
	require.NoError(t, err)
	doc, err := settings.Parse(raw)
	require.NoError(t, err)
	return doc
}

func (e env) requireSkill(t *testing.T, id, want string) {
	t.Helper()
	got := e.readSkill(t, id)
	require.True(t, settings.Equal(settings.MustParse(want), got), "got %s", got)
}

// run executes the root command with fresh flag values and returns stdout
func (e env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--server", e.url, "--log-level", "error"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestSetKeepsKindAndHiddenKeys(t *testing.T) {
	e := newEnv(t, server.Options{})
	e.writeSkill(t, alarmID, `{"volume": 5, "name": "Alarm", "__mycroft_skill_firstrun": false}`)

	_, err := e.run(t, "", "set", alarmID, "volume", "7")
	require.NoError(t, err)
	e.requireSkill(t, alarmID, `{"volume": 7, "name": "Alarm", "__mycroft_skill_firstrun": false}`)

	out, err := e.run(t, "", "get", alarmID, "volume")
	require.NoError(t, err)
	require.Equal(t, "7\n", out)

	_, err = e.run(t, "", "set", alarmID, "volume", "loud")
	require.ErrorIs(t, err, settings.ErrInvalidNumber)
	e.requireSkill(t, alarmID, `{"volume": 7, "name": "Alarm", "__mycroft_skill_firstrun": false}`)
}

func TestSetTypes(t *testing.T) {
	e := newEnv(t, server.Options{})
	e.writeSkill(t, alarmID, `{"volume": 5, "sounds": ["bell"], "note": null}`)

	_, err := e.run(t, "", "set", alarmID, "volume", "10", "--type", "string")
	require.NoError(t, err)
	_, err = e.run(t, "", "set", alarmID, "sounds", `["chime"]`)
	require.NoError(t, err)
	_, err = e.run(t, "", "set", alarmID, "note", "wake up")
	require.NoError(t, err)
	_, err = e.run(t, "", "set", alarmID, "extra", `{"a": [1, true]}`, "-t", "json")
	require.NoError(t, err)
	e.requireSkill(t, alarmID, `{"volume": "10", "sounds": ["chime"], "note": "wake up", "extra": {"a": [1, true]}}`)

	_, err = e.run(t, "", "set", alarmID, "sounds", `{"a": 1}`)
	require.ErrorIs(t, err, settings.ErrInvalidTarget)
	_, err = e.run(t, "", "set", alarmID, "volume", "1", "--type", "colour")
	require.Error(t, err)
}

func TestGetPaths(t *testing.T) {
	e := newEnv(t, server.Options{})
	e.writeSkill(t, alarmID, `{"alarms": [{"time": "07:30"}], "__mycroft_skill_firstrun": false}`)

	out, err := e.run(t, "", "get", alarmID, "alarms[0].time", "--raw")
	require.NoError(t, err)
	require.Equal(t, "07:30\n", out)

	out, err = e.run(t, "", "get", alarmID)
	require.NoError(t, err)
	require.NotContains(t, out, api.FirstRunKey)

	out, err = e.run(t, "", "get", alarmID, "--show-hidden")
	require.NoError(t, err)
	require.Contains(t, out, api.FirstRunKey)

	out, err = e.run(t, "", "get", alarmID, "missing")
	require.NoError(t, err)
	require.Equal(t, "null\n", out)

	_, err = e.run(t, "", "get", alarmID, "alarms[3]")
	require.ErrorIs(t, err, settings.ErrNotFound)

	_, err = e.run(t, "", "get", "skill-nope.someone")
	require.True(t, api.IsNotFound(err), "%v", err)
}

func TestDryRunLeavesServerAlone(t *testing.T) {
	e := newEnv(t, server.Options{})
	e.writeSkill(t, alarmID, `{"volume": 5}`)

	out, err := e.run(t, "", "set", alarmID, "volume", "9", "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, `-  "volume": 5`)
	require.Contains(t, out, `+  "volume": 9`)
	e.requireSkill(t, alarmID, `{"volume": 5}`)

	out, err = e.run(t, "", "merge", alarmID, `{"snooze": 10}`, "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, `+  "snooze": 10`)
	e.requireSkill(t, alarmID, `{"volume": 5}`)
}

func TestAdd(t *testing.T) {
	e := newEnv(t, server.Options{})
	e.writeSkill(t, alarmID, `{"sounds": ["bell"], "volume": 5}`)

	_, err := e.run(t, "", "add", alarmID, "sounds", "chime")
	require.NoError(t, err)
	_, err = e.run(t, "", "add", alarmID, ".", "10", "--key", "snooze", "--type", "number")
	require.NoError(t, err)
	_, err = e.run(t, "", "add", alarmID, ".", "--key", "enabled", "--type", "bool")
	require.NoError(t, err)
	_, err = e.run(t, "", "add", alarmID, ".", "--key", "extra", "--type", "object")
	require.NoError(t, err)
	e.requireSkill(t, alarmID, `{"sounds": ["bell", "chime"], "volume": 5, "snooze": 10, "enabled": true, "extra": {}}`)

	_, err = e.run(t, "", "add", alarmID, ".", "6", "--key", "volume", "--type", "number")
	require.ErrorIs(t, err, editor.ErrDuplicateKey)
	_, err = e.run(t, "", "add", alarmID, ".", "x")
	require.ErrorIs(t, err, editor.ErrEmptyKey)
	_, err = e.run(t, "", "add", alarmID, "volume", "x")
	require.ErrorIs(t, err, settings.ErrInvalidTarget)
	_, err = e.run(t, "", "add", alarmID, "sounds", "x", "--type", "json")
	require.ErrorIs(t, err, errJSONAdd)
}

func TestDeleteAsksFirst(t *testing.T) {
	e := newEnv(t, server.Options{})
	e.writeSkill(t, alarmID, `{"sounds": ["bell", "chime", "gong"], "volume": 5}`)

	out, err := e.run(t, "n\n", "delete", alarmID, "sounds[1]")
	require.NoError(t, err)
	require.Contains(t, out, "delete.question")
	require.Contains(t, out, "delete.cancelled")
	e.requireSkill(t, alarmID, `{"sounds": ["bell", "chime", "gong"], "volume": 5}`)

	_, err = e.run(t, "y\n", "delete", alarmID, "sounds[1]")
	require.NoError(t, err)
	e.requireSkill(t, alarmID, `{"sounds": ["bell", "gong"], "volume": 5}`)

	_, err = e.run(t, "", "rm", alarmID, "volume", "--yes")
	require.NoError(t, err)
	e.requireSkill(t, alarmID, `{"sounds": ["bell", "gong"]}`)

	_, err = e.run(t, "", "delete", alarmID, "volume", "--yes")
	require.ErrorIs(t, err, settings.ErrNotFound)
}

func TestMergeCreatesSkill(t *testing.T) {
	e := newEnv(t, server.Options{})
	e.writeSkill(t, alarmID, `{"sounds": ["bell"], "volume": 5}`)

	_, err := e.run(t, "", "merge", alarmID, `{"sounds": ["bell", "chime"], "volume": 6}`)
	require.NoError(t, err)
	e.requireSkill(t, alarmID, `{"sounds": ["bell", "chime"], "volume": 6}`)

	_, err = e.run(t, `{"units": "metric"}`, "merge", "skill-weather.openvoiceos", "-")
	require.NoError(t, err)
	e.requireSkill(t, "skill-weather.openvoiceos", `{"units": "metric"}`)

	file := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"lang": "en"}`), 0o644))
	_, err = e.run(t, "", "merge", "skill-weather.openvoiceos", "@"+file)
	require.NoError(t, err)
	e.requireSkill(t, "skill-weather.openvoiceos", `{"units": "metric", "lang": "en"}`)

	_, err = e.run(t, "", "merge", alarmID, `[1]`)
	require.ErrorIs(t, err, settings.ErrInvalidTarget)
}

func TestList(t *testing.T) {
	e := newEnv(t, server.Options{})
	e.writeSkill(t, alarmID, `{"volume": 5}`)
	e.writeSkill(t, "ovos-skill-date-time.openvoiceos", `{"__mycroft_skill_firstrun": false}`)

	out, err := e.run(t, "", "list")
	require.NoError(t, err)
	require.Contains(t, out, alarmID)
	require.Contains(t, out, "ovos-skill-date-time.openvoiceos")

	out, err = e.run(t, "", "list", "--hide-empty")
	require.NoError(t, err)
	require.Contains(t, out, alarmID)
	require.NotContains(t, out, "ovos-skill-date-time.openvoiceos")

	out, err = e.run(t, "", "list", "--match", "ovos-skill-*")
	require.NoError(t, err)
	require.NotContains(t, out, alarmID)
	require.Contains(t, out, "ovos-skill-date-time.openvoiceos")

	_, err = e.run(t, "", "list", "--match", "[")
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	e := newEnv(t, server.Options{})
	e.writeSkill(t, alarmID, `{"volume": 5, "__mycroft_skill_firstrun": false}`)
	e.writeSkill(t, "skill-weather.openvoiceos", `{"units": "metric"}`)

	out, err := e.run(t, "", "export", "-o", "-")
	require.NoError(t, err)
	doc := settings.MustParse(out)
	require.Equal(t, 2, doc.Len())
	require.NotContains(t, out, api.FirstRunKey)

	target := filepath.Join(t.TempDir(), "backup.yaml")
	out, err = e.run(t, "", "export", "--format", "yaml", "--output", target, "--match", "skill-alarm*")
	require.NoError(t, err)
	require.Contains(t, out, "export.done")
	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Contains(t, string(raw), alarmID)
	require.NotContains(t, string(raw), "skill-weather")

	_, err = e.run(t, "", "export", "--format", "xml")
	require.Error(t, err)
}

func TestLoginLogout(t *testing.T) {
	e := newEnv(t, server.Options{Username: "ana", Password: "secret"})
	e.writeSkill(t, alarmID, `{"volume": 5}`)

	_, err := e.run(t, "", "list")
	require.ErrorIs(t, err, api.ErrUnauthenticated)

	_, err = e.run(t, "", "login", "--user", "ana", "--password", "nope")
	require.ErrorIs(t, err, api.ErrAuthenticationFailed)
	require.Empty(t, config.Get().AuthHeader)

	out, err := e.run(t, "ana\nsecret\n", "login")
	require.NoError(t, err)
	require.Contains(t, out, "login.welcome")
	require.Equal(t, api.BasicHeader("ana", "secret"), config.Get().AuthHeader)
	require.Equal(t, e.url, config.Get().Server)

	out, err = e.run(t, "", "list")
	require.NoError(t, err)
	require.Contains(t, out, alarmID)

	_, err = e.run(t, "", "logout")
	require.NoError(t, err)
	require.Empty(t, config.Get().AuthHeader)
}

func TestConfigSet(t *testing.T) {
	e := newEnv(t, server.Options{})

	_, err := e.run(t, "", "config", "set", "theme", "light")
	require.NoError(t, err)
	require.Equal(t, config.ThemeLight, config.Get().Theme)

	_, err = e.run(t, "", "config", "set", "theme", "blue")
	require.Error(t, err)
	_, err = e.run(t, "", "config", "set", "colour", "blue")
	require.Error(t, err)

	out, err := e.run(t, "", "config", "show")
	require.NoError(t, err)
	require.Contains(t, out, "theme:     light")

	out, err = e.run(t, "", "config", "path")
	require.NoError(t, err)
	require.Equal(t, config.ConfigPath()+"\n", out)

	_, err = e.run(t, "", "config", "set", "theme", "dark")
	require.NoError(t, err)
}

func TestEditNeedsTerminal(t *testing.T) {
	e := newEnv(t, server.Options{})
	_, err := e.run(t, "", "edit")
	require.ErrorContains(t, err, "terminal")
}
