package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	requirementsJSON = `[{"ProjectId": 12.0, "RequirementId": 503.0, "ImportanceName": "High",
		"ProjectName": "Acme", "Name": "Login flow", "StatusName": "In Progress",
		"RequirementTypeName": "Feature", "Description": "<p>Users log in</p>"}]`
	incidentsJSON = `[{"ProjectId": 12.0, "IncidentId": 9.0, "PriorityName": "1 - Critical",
		"ProjectName": "Acme", "Name": "Crash on save", "IncidentStatusName": "Open",
		"IncidentTypeName": "Bug"}]`
)

type recordingBrowser struct {
	opened []string
}

func (b *recordingBrowser) OpenURL(url string) error {
	b.opened = append(b.opened, url)
	return nil
}

// newServer fakes the REST service. Tasks always fail.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/requirements"):
			_, _ = w.Write([]byte(requirementsJSON))
		case strings.HasSuffix(r.URL.Path, "/tasks"):
			http.Error(w, "task service down", http.StatusInternalServerError)
		case strings.HasSuffix(r.URL.Path, "/incidents"):
			_, _ = w.Write([]byte(incidentsJSON))
		case strings.HasSuffix(r.URL.Path, "/projects"):
			_, _ = w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// run executes the root command with a clean flag state.
func run(t *testing.T, serverURL, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SPIRA_URL", serverURL)
	t.Setenv("SPIRA_USERNAME", "fredbloggs")
	t.Setenv("SPIRA_API_KEY", "secret-key")
	t.Setenv("SPIRA_AUTH", "apikey")
	t.Setenv("SPIRA_RATE_LIMIT", "0")

	require.NoError(t, assignedCmd.Flags().Set("expand", "false"))
	require.NoError(t, assignedCmd.Flags().Lookup("kind").Value.(pflag.SliceValue).Replace(nil))
	require.NoError(t, showCmd.Flags().Set("open", "false"))
	require.NoError(t, rootCmd.PersistentFlags().Set("output", "text"))

	b := &recordingBrowser{}
	original := browser
	browser = b
	t.Cleanup(func() { browser = original })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAssignedCommand(t *testing.T) {
	server := newServer(t)

	out, err := run(t, server.URL, "", "assigned", "--expand")
	require.NoError(t, err)

	assert.Contains(t, out, "▾ Requirements (1)")
	assert.Contains(t, out, "RQ:503")
	assert.Contains(t, out, "Login flow")
	assert.Contains(t, out, "! Tasks:")
	assert.Contains(t, out, "task service down")
	assert.Contains(t, out, "▾ Incidents (1)")

	// Requirements come before the task error, which comes before incidents
	assert.Less(t, strings.Index(out, "Requirements"), strings.Index(out, "Tasks"))
	assert.Less(t, strings.Index(out, "Tasks"), strings.Index(out, "Incidents"))
}

func TestAssignedCommandCollapsedByDefault(t *testing.T) {
	server := newServer(t)

	out, err := run(t, server.URL, "", "assigned", "--kind", "incidents")
	require.NoError(t, err)

	assert.Contains(t, out, "▸ Requirements (1)")
	assert.NotContains(t, out, "Login flow")
	assert.Contains(t, out, "Crash on save")
}

func TestAssignedCommandJSON(t *testing.T) {
	server := newServer(t)

	out, err := run(t, server.URL, "", "assigned", "-o", "json")
	require.NoError(t, err)

	assert.Contains(t, out, `"token": "IN:9"`)
	assert.Contains(t, out, `"error": "failed to load tasks:`)
}

func TestShowCommand(t *testing.T) {
	server := newServer(t)

	out, err := run(t, server.URL, "", "show", "RQ:503", "--open")
	require.NoError(t, err)

	expectedURL := server.URL + "/12/Requirement/503.aspx"
	expected := "RQ:503 - Login flow\n" +
		"  " + expectedURL + "\n" +
		"Project: Acme\n" +
		"Priority: High\n" +
		"Status: In Progress\n" +
		"Description: <p>Users log in</p>\n"
	assert.Equal(t, expected, out)
	assert.Equal(t, []string{expectedURL}, browser.(*recordingBrowser).opened)
}

func TestShowCommandUnknownArtifact(t *testing.T) {
	server := newServer(t)

	_, err := run(t, server.URL, "", "show", "IN:10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artifact not found")
}

func TestOpenCommand(t *testing.T) {
	server := newServer(t)

	out, err := run(t, server.URL, "", "open", "IN:9")
	require.NoError(t, err)
	assert.Contains(t, out, "Opening "+server.URL+"/12/Incident/9.aspx")
}

func TestBrowseCommand(t *testing.T) {
	server := newServer(t)

	out, err := run(t, server.URL, "t incidents\ns 1\nq\n", "browse")
	require.NoError(t, err)
	assert.Contains(t, out, "IN:9 - Crash on save")
	assert.Contains(t, out, "Type: Bug")
}

func TestPingCommand(t *testing.T) {
	server := newServer(t)

	out, err := run(t, server.URL, "", "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected to "+server.URL)
}

func TestMissingConfiguration(t *testing.T) {
	_, err := run(t, "", "", "assigned")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPIRA_URL")
}
