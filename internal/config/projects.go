package config

import (
	"fmt"
	"strings"
)

// Project maps a display name to the organisation ("vo") id the venue
// backend expects.
type Project struct {
	Name  string
	OrgID string
}

// DefaultProjects returns the built-in project list.
func DefaultProjects() []Project {
	return []Project{
		{Name: "Kecamatan Berdaya", OrgID: "15557"},
		{Name: "Pendidikan", OrgID: "13231"},
		{Name: "Pelayanan Publik", OrgID: "12945"},
		{Name: "WMS POLDA Jawa Tengah", OrgID: "13329"},
		{Name: "Lainnya", OrgID: "15557"},
	}
}

// ParseProjects parses "Name=orgId;Other=orgId". An empty string yields nil.
func ParseProjects(raw string) ([]Project, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var projects []Project
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, orgID, ok := strings.Cut(part, "=")
		name, orgID = strings.TrimSpace(name), strings.TrimSpace(orgID)
		if !ok || name == "" || orgID == "" {
			return nil, fmt.Errorf("invalid PROJECTS entry %q (want Name=orgId)", part)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate project %q in PROJECTS", name)
		}
		seen[name] = true
		projects = append(projects, Project{Name: name, OrgID: orgID})
	}
	return projects, nil
}

// Project looks up a configured project by name.
func (c *Config) Project(name string) (Project, error) {
	for _, p := range c.Projects {
		if p.Name == name {
			return p, nil
		}
	}
	return Project{}, fmt.Errorf("unknown project %q", name)
}

// ProjectNames returns configured project names in order.
func (c *Config) ProjectNames() []string {
	names := make([]string, len(c.Projects))
	for i, p := range c.Projects {
		names[i] = p.Name
	}
	return names
}
