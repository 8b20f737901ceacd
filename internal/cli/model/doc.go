// Package model defines the resources exchanged with the CMS backend.
//
// Types mirror the backend's JSON documents field for field:
//
//   - envelope.go: response envelope, field errors, pagination
//   - profile.go: administrator / user profiles and roles
//   - contact.go: contact-form submissions and bulk actions
//   - media.go: gallery items and the MediaRef URL contract
//   - notice.go: the site-wide notice banner
package model
