package model

import (
	"fmt"
	"time"
)

// ContactStatus is the triage state of a contact submission.
type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

// ParseContactStatus validates a contact status.
func ParseContactStatus(s string) (ContactStatus, error) {
	switch st := ContactStatus(s); st {
	case ContactNew, ContactRead, ContactReplied, ContactArchived:
		return st, nil
	default:
		return "", fmt.Errorf("invalid contact status %q", s)
	}
}

// Contact is a contact-form submission.
type Contact struct {
	ID        string        `json:"id" yaml:"id"`
	Name      string        `json:"name" yaml:"name"`
	Email     string        `json:"email" yaml:"email"`
	Phone     string        `json:"phone,omitempty" yaml:"phone,omitempty" table:"wide"`
	Subject   string        `json:"subject" yaml:"subject"`
	Message   string        `json:"message" yaml:"message" table:"-"`
	Status    ContactStatus `json:"status" yaml:"status"`
	Notes     string        `json:"notes,omitempty" yaml:"notes,omitempty" table:"-"`
	CreatedAt time.Time     `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" yaml:"updated_at" table:"wide"`
}

// ContactInput is the public submission body.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactUpdate carries the admin-editable contact fields.
type ContactUpdate struct {
	Status ContactStatus `json:"status,omitempty"`
	Notes  string        `json:"notes,omitempty"`
}

// ContactList is a page of contacts.
type ContactList struct {
	Contacts   []Contact  `json:"contacts"`
	Pagination Pagination `json:"pagination"`
}

// ContactBulkAction names an action applied to many contacts at once.
type ContactBulkAction string

const (
	ContactMarkRead    ContactBulkAction = "markRead"
	ContactMarkReplied ContactBulkAction = "markReplied"
	ContactArchive     ContactBulkAction = "archive"
	ContactDelete      ContactBulkAction = "delete"
)

// ParseContactBulkAction validates a contact bulk action.
func ParseContactBulkAction(s string) (ContactBulkAction, error) {
	switch a := ContactBulkAction(s); a {
	case ContactMarkRead, ContactMarkReplied, ContactArchive, ContactDelete:
		return a, nil
	default:
		return "", fmt.Errorf("invalid contact action %q (want markRead, markReplied, archive or delete)", s)
	}
}

// BulkRequest is the body of bulk endpoints.
type BulkRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action,omitempty"`
}
