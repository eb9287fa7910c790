package models

import (
	"strings"
	"time"
)

// SessionSource records where a credential came from.
type SessionSource string

const (
	// SourceManual is a credential pasted by the user.
	SourceManual SessionSource = "manual"
	// SourceBrowser is a credential read from a local browser cookie store.
	SourceBrowser SessionSource = "browser"
)

// Session is the opaque venue credential kept for one project. The value is
// never inspected; only the backend decides whether it is valid.
type Session struct {
	UpdatedAt  time.Time     `json:"updatedAt"`
	Project    string        `json:"project"`
	Credential string        `json:"credential"`
	Source     SessionSource `json:"source,omitempty"`
}

// Masked returns the credential with all but its first four characters hidden.
func (s Session) Masked() string {
	const visible = 4
	if len(s.Credential) <= visible {
		return strings.Repeat("*", len(s.Credential))
	}
	return s.Credential[:visible] + strings.Repeat("*", len(s.Credential)-visible)
}
