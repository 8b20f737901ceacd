package model

import (
	"fmt"
	"time"
)

// MediaRef exposes the candidate URLs of a media asset.
type MediaRef interface {
	ThumbnailRef() string
	FileRef() string
	ExternalRef() string
}

// MediaType distinguishes images from videos.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ParseMediaType validates a media type.
func ParseMediaType(s string) (MediaType, error) {
	switch t := MediaType(s); t {
	case MediaImage, MediaVideo:
		return t, nil
	default:
		return "", fmt.Errorf("invalid media type %q (want image or video)", s)
	}
}

// MediaSource tells whether the asset was uploaded or linked.
type MediaSource string

const (
	SourceUpload   MediaSource = "upload"
	SourceExternal MediaSource = "external"
)

// Media is a gallery item.
type Media struct {
	ID           string      `json:"id" yaml:"id"`
	Title        string      `json:"title" yaml:"title"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty" table:"-"`
	Type         MediaType   `json:"type" yaml:"type"`
	Source       MediaSource `json:"source" yaml:"source"`
	FileName     string      `json:"fileName,omitempty" yaml:"file_name,omitempty" table:"wide"`
	MimeType     string      `json:"mimeType,omitempty" yaml:"mime_type,omitempty" table:"wide"`
	Size         int64       `json:"size,omitempty" yaml:"size,omitempty"`
	FileURL      string      `json:"fileUrl,omitempty" yaml:"file_url,omitempty" table:"wide"`
	ThumbnailURL string      `json:"thumbnailUrl,omitempty" yaml:"thumbnail_url,omitempty" table:"-"`
	ExternalURL  string      `json:"externalUrl,omitempty" yaml:"external_url,omitempty" table:"wide"`
	AltText      string      `json:"altText,omitempty" yaml:"alt_text,omitempty" table:"-"`
	Tags         []string    `json:"tags,omitempty" yaml:"tags,omitempty" table:"wide"`
	CreatedAt    time.Time   `json:"createdAt" yaml:"created_at"`
}

func (m *Media) ThumbnailRef() string { return m.ThumbnailURL }
func (m *Media) FileRef() string      { return m.FileURL }
func (m *Media) ExternalRef() string  { return m.ExternalURL }

// MediaMeta holds the descriptive fields sent with uploads and updates.
type MediaMeta struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	AltText     string   `json:"altText,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ExternalMedia is the add-external request body.
type ExternalMedia struct {
	MediaMeta
	URL  string    `json:"externalUrl"`
	Type MediaType `json:"type"`
}

// MediaList is a page of media items.
type MediaList struct {
	Media      []Media    `json:"media"`
	Pagination Pagination `json:"pagination"`
}
