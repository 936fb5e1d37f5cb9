package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/crux-terminal/internal/cli"
	"github.com/pluqqy/crux-terminal/pkg/files"
)

// fakeAPI is an in-memory stand-in for the dashboard API server
type fakeAPI struct {
	daemon  string
	sent    map[string]any
	lastGet string
}

var fakeComponents = map[string]any{
	"tcp://localhost:30021": map[string]any{
		"name":        "filter",
		"author":      "crux",
		"version":     "2.0",
		"description": "Drops rows under a threshold",
		"inputs":      map[string]any{"rows": map[string]any{"type": "table"}},
		"outputs":     map[string]any{"rows": map[string]any{"type": "table"}},
		"parameters": map[string]any{
			"threshold": map[string]any{"type": "text", "default": "0.5"},
		},
	},
	"tcp://localhost:30022": map[string]any{
		"name":    "loader",
		"version": "1.2.0",
		"parameters": map[string]any{
			"format": map[string]any{"type": "dropdown", "default": "csv", "options": []string{"csv", "json"}},
		},
	},
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reply := map[string]any{"success": true}
	switch r.URL.Path {
	case "/api/daemon/connect":
		addr := r.URL.Query().Get("daemon")
		if addr == "tcp://nowhere:1" {
			reply = map[string]any{"success": false, "message": "daemon unreachable"}
			break
		}
		f.daemon = addr
	case "/api/daemon/get":
		if f.daemon == "" {
			reply["address"] = nil
		} else {
			reply["address"] = f.daemon
		}
	case "/api/components/list":
		reply["components"] = fakeComponents
	case "/api/components/get":
		f.lastGet = r.URL.Query().Get("address")
		c, ok := fakeComponents[f.lastGet]
		if !ok {
			reply = map[string]any{"success": false, "message": "no such component"}
			break
		}
		reply["component"] = c
	case "/api/components/load":
		reply["address"] = "tcp://localhost:30023"
	case "/api/components/send":
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &f.sent)
		reply["response"] = map[string]any{"pong": true}
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reply)
}

// setupAPI runs every command in a temp project against a fake API server
func setupAPI(t *testing.T) *fakeAPI {
	t.Helper()
	tempDir := t.TempDir()
	oldDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() { os.Chdir(oldDir) })

	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cli.SetAPIOverride(srv.URL + "/api")
	cli.SetGlobalFlags(true, true, true)
	t.Cleanup(func() {
		cli.SetAPIOverride("")
		cli.SetGlobalFlags(false, false, false)
	})

	applyFrom, applyChain, applyAudit, applySaveTo, saveTo = "", false, false, "", ""
	sendMessage, listFilter = "", ""
	return api
}

// run executes cmd with the root's persistent --output flag attached
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "crux"}
	root.PersistentFlags().StringP("output", "o", "text", "Output format")
	root.AddCommand(cmd)

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{cmd.Name()}, args...))

	err := root.Execute()
	return buf.String(), err
}

func TestDaemonConnect(t *testing.T) {
	api := setupAPI(t)

	_, err := run(t, NewDaemonCommand(), "connect", "tcp://10.0.0.5:30020")
	require.NoError(t, err)
	assert.Equal(t, "tcp://10.0.0.5:30020", api.daemon)

	out, err := run(t, NewDaemonCommand(), "get")
	require.NoError(t, err)
	assert.Equal(t, "tcp://10.0.0.5:30020\n", out)
}

func TestDaemonConnectUsesSettings(t *testing.T) {
	api := setupAPI(t)

	_, err := run(t, NewDaemonCommand(), "connect")
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:30020", api.daemon)
}

func TestDaemonConnectFailure(t *testing.T) {
	setupAPI(t)

	_, err := run(t, NewDaemonCommand(), "connect", "tcp://nowhere:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daemon unreachable")
}

func TestDaemonGetNotConnected(t *testing.T) {
	setupAPI(t)

	out, err := run(t, NewDaemonCommand(), "get")
	require.NoError(t, err)
	assert.Contains(t, out, "No daemon connected")

	out, err = run(t, NewDaemonCommand(), "get", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"address": "", "connected": false}`, out)
}

func TestComponentsList(t *testing.T) {
	setupAPI(t)

	out, err := run(t, NewComponentsCommand(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ADDRESS")
	assert.Contains(t, out, "tcp://localhost:30021")
	assert.Contains(t, out, "filter")
	assert.Contains(t, out, "loader")

	out, err = run(t, NewComponentsCommand(), "list", "-o", "json")
	require.NoError(t, err)
	var result ComponentListResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "tcp://localhost:30021", result.Items[0].Address)
	assert.Equal(t, "loader", result.Items[1].Name)
}

func TestComponentsListFilter(t *testing.T) {
	setupAPI(t)

	out, err := run(t, NewComponentsCommand(), "list", "--filter", "param:format", "-o", "json")
	require.NoError(t, err)
	var result ComponentListResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "loader", result.Items[0].Name)

	_, err = run(t, NewComponentsCommand(), "list", "--filter", "colour:red")
	assert.ErrorContains(t, err, "invalid filter")
}

func TestComponentsGet(t *testing.T) {
	api := setupAPI(t)

	out, err := run(t, NewComponentsCommand(), "get", "tcp://localhost:30022")
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:30022", api.lastGet)
	assert.Contains(t, out, "loader 1.2.0")
	assert.Contains(t, out, "format (dropdown) default csv [csv, json]")
	assert.Contains(t, out, "Inputs:\n  (none)")

	_, err = run(t, NewComponentsCommand(), "get", "tcp://localhost:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such component")
}

func TestComponentsLoad(t *testing.T) {
	setupAPI(t)

	// Quiet mode prints only the address
	out, err := run(t, NewComponentsCommand(), "load", "components/dumper")
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:30023\n", out)
}

func TestComponentsSend(t *testing.T) {
	api := setupAPI(t)

	out, err := run(t, NewComponentsCommand(), "send", "tcp://localhost:30021",
		"--message", `{"name": "ping", /* comment */ "n": 1,}`)
	require.NoError(t, err)
	assert.Equal(t, "ping", api.sent["name"])
	assert.JSONEq(t, `{"pong": true}`, out)
}

func TestComponentsSendRequiresName(t *testing.T) {
	api := setupAPI(t)

	_, err := run(t, NewComponentsCommand(), "send", "tcp://localhost:30021", "--message", `{"n": 1}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
	assert.Nil(t, api.sent)

	_, err = run(t, NewComponentsCommand(), "send", "tcp://localhost:30021", "--message", `[1, 2]`)
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	api := setupAPI(t)
	api.daemon = "tcp://localhost:30020"

	out, err := run(t, NewStatusCommand(), "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "daemon: tcp://localhost:30020")
	assert.Contains(t, out, "components: 2")
	assert.Contains(t, out, "- filter")

	out, err = run(t, NewStatusCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Components: 2")
}

func TestStatusRejectsBadOutput(t *testing.T) {
	setupAPI(t)

	_, err := run(t, NewStatusCommand(), "-o", "xml")
	assert.Error(t, err)
}

const buildScript = `operations:
  - op: add_dependency
    name: filter
  - op: add_step
    name: loader
  - op: add_step
    name: filter
  - op: set_parameter
    index: 1
    key: threshold
    value: "0.9"
  - op: set_remap
    index: 0
    from: records
    to: rows
`

func writeScript(t *testing.T, content string) string {
	t.Helper()
	require.NoError(t, files.InitProjectStructure())
	path := filepath.Join(files.CruxDir, files.ScriptsDir, "build.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return "build.yaml"
}

func TestPipelineApply(t *testing.T) {
	setupAPI(t)
	script := writeScript(t, buildScript)

	out, err := run(t, NewPipelineCommand(), "apply", script, "-o", "json", "--audit", "--chain")
	require.NoError(t, err)

	var result ApplyResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Pipeline.Pipeline, 2)
	assert.Equal(t, "loader", result.Pipeline.Pipeline[0].Component)
	assert.Equal(t, "rows", result.Pipeline.Pipeline[0].Remap["records"])
	assert.Equal(t, "0.9", result.Pipeline.Pipeline[1].Parameters["threshold"].Value)
	assert.Equal(t, "tcp://localhost:30021", result.Pipeline.Components["filter"].Src)
	assert.Equal(t, "2.0", result.Pipeline.Components["filter"].Version)

	require.NotNil(t, result.Audit)
	assert.Equal(t, []string{"loader"}, result.Audit.Undeclared)
	assert.Empty(t, result.Audit.Unused)

	assert.Equal(t, []string{"dep:filter", "step:0:loader", "step:1:filter"}, result.Chain)
}

func TestPipelineApplyText(t *testing.T) {
	setupAPI(t)
	script := writeScript(t, buildScript)

	out, err := run(t, NewPipelineCommand(), "apply", script, "--audit")
	require.NoError(t, err)
	assert.Contains(t, out, "Steps (2):")
	assert.Contains(t, out, "threshold (text) = 0.9")
	assert.Contains(t, out, "undeclared: loader")
}

func TestPipelineApplyFrom(t *testing.T) {
	setupAPI(t)
	script := writeScript(t, "operations:\n  - op: delete_step\n    index: 0\n")

	doc := `{
  // existing pipeline
  "components": {"loader": {}},
  "pipeline": [
    {"component": "loader", "parameters": {}, "remap": {}},
    {"component": "loader", "parameters": {}, "remap": {"a": "b"}},
  ]
}`
	require.NoError(t, os.WriteFile("pipeline.json", []byte(doc), 0644))

	out, err := run(t, NewPipelineCommand(), "apply", script, "--from", "pipeline.json", "-o", "json")
	require.NoError(t, err)

	var result ApplyResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Pipeline.Pipeline, 1)
	assert.Equal(t, "b", result.Pipeline.Pipeline[0].Remap["a"])
}

func TestPipelineApplyUnknownComponent(t *testing.T) {
	setupAPI(t)
	script := writeScript(t, "operations:\n  - op: add_step\n    name: ghost\n")

	_, err := run(t, NewPipelineCommand(), "apply", script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find component 'ghost'")
}

func TestPipelineSave(t *testing.T) {
	setupAPI(t)

	out, err := run(t, NewPipelineCommand(), "save")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sorry": "not yet implemented"}`, out)

	_, err = run(t, NewPipelineCommand(), "save", "--save-to", filepath.Join("out", "saved.json"))
	require.NoError(t, err)
	// Overwriting asks first; -y is in effect here
	_, err = run(t, NewPipelineCommand(), "save", "--save-to", filepath.Join("out", "saved.json"))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join("out", "saved.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sorry": "not yet implemented"}`, string(content))
}

func TestPipelineSaveReportsOnCommandOutput(t *testing.T) {
	setupAPI(t)
	cli.SetGlobalFlags(false, true, false)
	path := filepath.Join("out", "saved.json")

	out, err := run(t, NewPipelineCommand(), "save", "--save-to", path)
	require.NoError(t, err)
	assert.Equal(t, "OK: Saved pipeline to "+path+"\n", out)

	// Without -y an existing file is kept unless the answer is yes
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0644))
	root := &cobra.Command{Use: "crux"}
	root.PersistentFlags().StringP("output", "o", "text", "Output format")
	root.AddCommand(NewPipelineCommand())
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetIn(strings.NewReader("n\n"))
	root.SetArgs([]string{"pipeline", "save", "--save-to", path})
	require.NoError(t, root.Execute())

	assert.Contains(t, buf.String(), path+" exists. Overwrite? [y/N]: ")
	assert.Contains(t, buf.String(), "INFO: Kept "+path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(content))
}

func TestExamplesCommand(t *testing.T) {
	setupAPI(t)

	out, err := run(t, NewExamplesCommand(), "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "[basics] Single step")
	assert.Contains(t, out, "example-etl.yaml")

	_, err = run(t, NewExamplesCommand(), "etl")
	assert.ErrorContains(t, err, "crux init")

	require.NoError(t, files.InitProjectStructure())
	_, err = run(t, NewExamplesCommand(), "all")
	require.NoError(t, err)
	_, err = os.Stat(files.ScriptPath("example-etl.yaml"))
	assert.NoError(t, err)

	_, err = run(t, NewExamplesCommand(), "web")
	assert.ErrorContains(t, err, "invalid category")
}

func TestPipelineApplyInstalledExample(t *testing.T) {
	setupAPI(t)
	require.NoError(t, files.InitProjectStructure())
	_, err := run(t, NewExamplesCommand(), "basics")
	require.NoError(t, err)

	out, err := run(t, NewPipelineCommand(), "apply", "example-single-filter.yaml", "-o", "json")
	require.NoError(t, err)

	var result ApplyResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Pipeline.Pipeline, 1)
	assert.Equal(t, "0.8", result.Pipeline.Pipeline[0].Parameters["threshold"].Value)
}
