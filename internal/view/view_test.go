package view

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/danielolaszy/spira/internal/loader"
	"github.com/danielolaszy/spira/internal/panel"
	"github.com/danielolaszy/spira/pkg/models"
)

func resolve(a models.Artifact, baseURL string) (string, error) {
	return fmt.Sprintf("%s/%d/x/%d.aspx", baseURL, a.ProjectID(), a.ArtifactID()), nil
}

func newController(t *testing.T) *panel.Controller {
	t.Helper()
	req := models.NewRequirement(12, "Acme", 503, "Login flow", models.StringPtr("High"))
	req.SetDescription(models.StringPtr("<p>Users <b>must</b> log in</p>"))
	task := models.NewTask(12, "Acme", 41, "Write docs", nil)

	c := panel.NewController("https://spira.example.com", resolve)
	c.Show([]models.Artifact{req}, []models.Artifact{task}, nil)
	return c
}

type recordingBrowser struct {
	opened []string
}

func (b *recordingBrowser) OpenURL(url string) error {
	b.opened = append(b.opened, url)
	return nil
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "yaml": FormatYAML, " json ": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestListText(t *testing.T) {
	c := newController(t)
	_, err := c.Toggle(models.KindRequirement)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).List(c.List()))

	expected := "▾ Requirements (1)\n" +
		"    [1] RQ:503   Login flow\n" +
		"▸ Tasks (1)\n"
	assert.Equal(t, expected, buf.String())
	assert.NotContains(t, buf.String(), "Incidents")
}

func TestListTextErrorBanner(t *testing.T) {
	m := panel.ListRegionModel{Sections: []panel.Section{{
		Kind:  models.KindTask,
		Title: "Tasks",
		Err:   &loader.LoadFailure{Kind: models.KindTask, Err: errors.New("timeout")},
	}}}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).List(m))
	assert.Equal(t, "! Tasks: failed to load tasks: timeout\n", buf.String())
}

func TestListTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).List(panel.ListRegionModel{}))
	assert.Contains(t, buf.String(), "Nothing is assigned")
}

func TestListStructured(t *testing.T) {
	c := newController(t)

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewRenderer(&buf, FormatJSON).List(c.List()))

		var doc listDoc
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		require.Len(t, doc.Sections, 2)
		assert.Equal(t, "requirement", doc.Sections[0].Kind)
		assert.Equal(t, "collapsed", doc.Sections[0].State)
		assert.Equal(t, []rowDoc{{Token: "RQ:503", Name: "Login flow"}}, doc.Sections[0].Rows)
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewRenderer(&buf, FormatYAML).List(c.List()))

		var doc listDoc
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
		require.Len(t, doc.Sections, 2)
		assert.Equal(t, "Tasks", doc.Sections[1].Title)
		assert.Equal(t, "TK:41", doc.Sections[1].Rows[0].Token)
	})
}

func TestDetailText(t *testing.T) {
	c := newController(t)
	detail, err := c.SelectToken("RQ:503")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).Detail(detail))

	expected := "RQ:503 - Login flow\n" +
		"  https://spira.example.com/12/x/503.aspx\n" +
		"Project: Acme\n" +
		"Priority: High\n" +
		"Description: <p>Users <b>must</b> log in</p>\n"
	assert.Equal(t, expected, buf.String())
}

func TestDetailJSONKeepsMarkup(t *testing.T) {
	c := newController(t)
	detail, err := c.SelectToken("RQ:503")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatJSON).Detail(detail))
	assert.Contains(t, buf.String(), "<p>Users <b>must</b> log in</p>")
}

func TestSessionRun(t *testing.T) {
	c := newController(t)
	b := &recordingBrowser{}
	var out bytes.Buffer
	refreshed := 0

	session := &Session{
		Controller: c,
		Out:        &out,
		Browser:    b,
		Refresh: func(ctx context.Context) panel.Result {
			refreshed++
			return panel.Result{List: c.List()}
		},
	}

	script := strings.Join([]string{
		"t tasks",
		"s 1",
		"o",
		"s 9",
		"bogus",
		"r",
		"q",
		"l",
	}, "\n")

	require.NoError(t, session.Run(context.Background(), strings.NewReader(script)))

	output := out.String()
	assert.Contains(t, output, "▾ Tasks (1)")
	assert.Contains(t, output, "TK:41 - Write docs")
	assert.Contains(t, output, "error: no visible row 9")
	assert.Contains(t, output, `error: unknown command "bogus"`)
	assert.Equal(t, []string{"https://spira.example.com/12/x/41.aspx"}, b.opened)
	assert.Equal(t, 1, refreshed)
}

func TestSessionOpenWithoutSelection(t *testing.T) {
	var out bytes.Buffer
	session := &Session{Controller: newController(t), Out: &out, Browser: &recordingBrowser{}}

	require.NoError(t, session.Run(context.Background(), strings.NewReader("o\n")))
	assert.Contains(t, out.String(), "error: nothing selected")
}
