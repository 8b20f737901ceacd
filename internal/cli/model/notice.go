package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority orders notices; the banner styling follows it.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorityRank = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

// ParsePriority validates a priority name.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := priorityRank[p]; !ok {
		return "", fmt.Errorf("invalid priority %q (want low, medium, high or urgent)", s)
	}
	return p, nil
}

// Rank returns the numeric order of p; unknown priorities rank 0.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// Notice is the site-wide announcement.
type Notice struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Content   string     `json:"content" yaml:"content" table:"-"`
	Priority  Priority   `json:"priority" yaml:"priority"`
	IsActive  bool       `json:"isActive" yaml:"is_active"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" yaml:"expires_at,omitempty"`
	ImageURL  string     `json:"imageUrl,omitempty" yaml:"image_url,omitempty" table:"wide"`
	Link      string     `json:"link,omitempty" yaml:"link,omitempty" table:"wide"`
	CreatedAt time.Time  `json:"createdAt" yaml:"created_at" table:"wide"`
	UpdatedAt time.Time  `json:"updatedAt" yaml:"updated_at"`
}

// Expired reports whether the notice has an expiry at or before now.
func (n *Notice) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && !n.ExpiresAt.After(now)
}

// Visible reports whether the banner should be shown at now.
func (n *Notice) Visible(now time.Time) bool {
	return n != nil && n.IsActive && !n.Expired(now)
}

// NoticeInput is the create/update body. ExpiresAt nil leaves the notice open-ended.
type NoticeInput struct {
	Title     string     `json:"title,omitempty"`
	Content   string     `json:"content,omitempty"`
	Priority  Priority   `json:"priority,omitempty"`
	IsActive  *bool      `json:"isActive,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Link      string     `json:"link,omitempty"`
}

// NoticeList is a page of notices.
type NoticeList struct {
	Notices    []Notice   `json:"notices"`
	Pagination Pagination `json:"pagination"`
}
