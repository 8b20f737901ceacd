// Package confloader loads layered configuration with koanf and watches the
// config file for changes.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (applied by the caller)
//  2. Environment variables (CMSADMIN_SECTION_KEY)
//  3. The YAML config file
//  4. Defaults passed to LoadMap
package confloader
