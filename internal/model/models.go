// internal/model/models.go
package model

import (
	"time"
)

// Repository is a read-only summary of a GitHub repository, fetched per request.
type Repository struct {
	GithubRepoID int64     `json:"id"`
	Owner        string    `json:"owner"`
	Name         string    `json:"name"`
	FullName     string    `json:"full_name"`
	Description  *string   `json:"description"`
	URL          string    `json:"html_url"`
	Language     *string   `json:"language"`
	ForksCount   int       `json:"forks_count"`
	StarsCount   int       `json:"stargazers_count"`
	Fork         bool      `json:"fork"`
	PushedAt     time.Time `json:"pushed_at"`
}

// Profile is the authenticated GitHub user.
type Profile struct {
	ID          int64   `json:"id"`
	Login       string  `json:"login"`
	Name        *string `json:"name"`
	AvatarURL   string  `json:"avatar_url"`
	HTMLURL     string  `json:"html_url"`
	Bio         *string `json:"bio"`
	PublicRepos int     `json:"public_repos"`
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`
	Email       *string `json:"email,omitempty"`
}

// DisplayName returns the profile name, or the login when no name is set.
func (p Profile) DisplayName() string {
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	return p.Login
}

// CommitWeek is one upstream-reported week of commit activity.
type CommitWeek struct {
	Week  int64 `json:"week"`
	Total int   `json:"total"`
	Days  []int `json:"days"`
}

// ActivityStatus tags a CommitActivity result.
type ActivityStatus string

const (
	ActivitySuccess   ActivityStatus = "success"
	ActivityAnalyzing ActivityStatus = "analyzing"
	ActivityError     ActivityStatus = "error"
)

// CommitActivity is the outcome of polling the commit-activity endpoint.
// Weeks is only populated when Status is ActivitySuccess; an analyzing or
// error result never means "zero commits".
type CommitActivity struct {
	Status ActivityStatus `json:"status"`
	Weeks  []CommitWeek   `json:"weeks,omitempty"`
}

// WeekTotal is the chart projection of a CommitWeek.
type WeekTotal struct {
	Week  int64 `json:"week"`
	Total int   `json:"total"`
}

// LanguageShare is one language's share of a repository's bytes, in percent.
type LanguageShare struct {
	Lang string  `json:"lang"`
	Pct  float64 `json:"pct"`
}

// RepoStats is the aggregated record produced per repository.
type RepoStats struct {
	Repo         Repository      `json:"repo"`
	Weeks        []WeekTotal     `json:"weeks"`
	Languages    []LanguageShare `json:"languages"`
	CommitStatus ActivityStatus  `json:"commit_status"`
}

// Dashboard bundles the authenticated profile with per-repository stats.
type Dashboard struct {
	User  Profile     `json:"user"`
	Repos []RepoStats `json:"repos"`
}

// NoteStatus is the workflow state of a note.
type NoteStatus string

const (
	NoteTodo       NoteStatus = "TODO"
	NoteInProgress NoteStatus = "IN_PROGRESS"
	NoteDone       NoteStatus = "DONE"
)

// Valid reports whether s is one of the known note statuses.
func (s NoteStatus) Valid() bool {
	switch s {
	case NoteTodo, NoteInProgress, NoteDone:
		return true
	}
	return false
}

// Note is a personal note owned by exactly one user.
type Note struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Status    NoteStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Units is the unit system used for weather lookups.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Valid reports whether u is a supported unit system.
func (u Units) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// WeatherSettings is the per-user weather preference.
type WeatherSettings struct {
	City  *string `json:"weatherCity"`
	Units Units   `json:"weatherUnits"`
}

// Story is a Hacker News story with derived links.
type Story struct {
	ID            int64  `json:"id"`
	Type          string `json:"type"`
	By            string `json:"by,omitempty"`
	Time          int64  `json:"time,omitempty"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	Score         *int   `json:"score,omitempty"`
	Descendants   *int   `json:"descendants,omitempty"`
	Domain        string `json:"domain"`
	DiscussionURL string `json:"discussion_url"`
}
