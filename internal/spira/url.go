package spira

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/danielolaszy/spira/pkg/models"
)

// ErrInvalidBaseURL is returned when the instance URL cannot be used to build links.
var ErrInvalidBaseURL = errors.New("invalid base URL")

// pages maps each kind to the path segment of its web page.
var pages = map[models.Kind]string{
	models.KindRequirement: "Requirement",
	models.KindTask:        "Task",
	models.KindIncident:    "Incident",
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidBaseURL, raw)
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// ResolveURL returns the web page of an artifact, e.g.
// https://demo.spiraservice.net/12/Requirement/503.aspx
func ResolveURL(artifact models.Artifact, baseURL string) (string, error) {
	if artifact == nil {
		return "", errors.New("cannot resolve URL of nil artifact")
	}

	page, ok := pages[artifact.Kind()]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownKind, artifact.Kind())
	}

	u, err := parseBaseURL(baseURL)
	if err != nil {
		return "", err
	}

	u = u.JoinPath(strconv.Itoa(artifact.ProjectID()), page, strconv.Itoa(artifact.ArtifactID())+".aspx")
	return u.String(), nil
}
