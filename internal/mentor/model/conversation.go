package model

import (
	"strconv"
	"strings"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether the role is one the chat API accepts.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Turn is a single message in the dialogue history. Turns are appended,
// never edited; their order is the order passed to providers.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// LastUserContent returns the content of the most recent user turn,
// or "" when the history has none.
func LastUserContent(history []Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return history[i].Content
		}
	}
	return ""
}

// UserContext is the optional student profile supplied per request.
// It is never persisted by the core; it only enriches prompts and
// downstream tool arguments.
type UserContext struct {
	Rank      int      `json:"rank,omitempty"`
	Category  string   `json:"category,omitempty"`
	HomeState string   `json:"homeState,omitempty"`
	Branches  []string `json:"branches,omitempty"`
}

// Empty reports whether no profile field is set.
func (c UserContext) Empty() bool {
	return c.Rank == 0 && c.Category == "" && c.HomeState == "" && len(c.Branches) == 0
}

// Summary renders the profile the way it is appended to system prompts,
// e.g. "[Student Profile: Rank: 5000, Category: OBC, State: Telangana]".
// Only fields that are present are rendered.
func (c UserContext) Summary() string {
	if c.Empty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n[Student Profile: ")
	var parts []string
	if c.Rank > 0 {
		parts = append(parts, "Rank: "+strconv.Itoa(c.Rank))
	}
	if c.Category != "" {
		parts = append(parts, "Category: "+c.Category)
	}
	if c.HomeState != "" {
		parts = append(parts, "State: "+c.HomeState)
	}
	if len(c.Branches) > 0 {
		parts = append(parts, "Interested in: "+strings.Join(c.Branches, ", "))
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString("]")
	return b.String()
}
