package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danielolaszy/spira/internal/panel"
	"github.com/danielolaszy/spira/pkg/models"
)

const browseHelp = `Commands:
  t <kind>        expand or collapse a section (requirements, tasks, incidents)
  s <n|PREFIX:ID> show the detail of a visible row or artifact
  o               open the selected artifact in the browser
  l               list the sections again
  r               reload everything from the server
  h               show this help
  q               quit
`

// Session is an interactive terminal host for a panel controller.
type Session struct {
	Controller *panel.Controller
	Out        io.Writer
	Browser    Browser
	// Refresh reloads the panel; nil disables the "r" command.
	Refresh func(ctx context.Context) panel.Result
}

// Run reads commands from in until "q", EOF, or ctx is cancelled.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	r := NewRenderer(s.Out, FormatText)
	if err := r.List(s.Controller.List()); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.Out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.Out)
			return scanner.Err()
		}

		quit, err := s.exec(ctx, r, strings.Fields(scanner.Text()))
		if err != nil {
			fmt.Fprintf(s.Out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (s *Session) exec(ctx context.Context, r *Renderer, args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}

	switch args[0] {
	case "q", "quit", "exit":
		return true, nil

	case "h", "help", "?":
		_, err := io.WriteString(s.Out, browseHelp)
		return false, err

	case "l", "list":
		return false, r.List(s.Controller.List())

	case "t", "toggle":
		if len(args) != 2 {
			return false, errors.New("usage: t <kind>")
		}
		kind, err := models.ParseKind(args[1])
		if err != nil {
			return false, err
		}
		if _, err := s.Controller.Toggle(kind); err != nil {
			return false, err
		}
		return false, r.List(s.Controller.List())

	case "s", "select":
		if len(args) != 2 {
			return false, errors.New("usage: s <n|PREFIX:ID>")
		}
		detail, err := s.selectArg(args[1])
		if err != nil {
			return false, err
		}
		return false, r.Detail(detail)

	case "o", "open":
		if s.Browser == nil {
			return false, errors.New("no browser available")
		}
		link, err := s.Controller.SelectedURL()
		if err != nil {
			return false, err
		}
		return false, s.Browser.OpenURL(link)

	case "r", "reload", "refresh":
		if s.Refresh == nil {
			return false, errors.New("reload is not available")
		}
		result := s.Refresh(ctx)
		return false, r.List(result.List)
	}

	return false, fmt.Errorf("unknown command %q, type h for help", args[0])
}

// selectArg accepts a 1-based visible row number or a display code.
func (s *Session) selectArg(arg string) (panel.DetailRegionModel, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return s.Controller.SelectToken(arg)
	}

	visible := s.Controller.List().VisibleArtifacts()
	if n < 1 || n > len(visible) {
		return panel.DetailRegionModel{}, fmt.Errorf("no visible row %d", n)
	}
	return s.Controller.Select(visible[n-1])
}
