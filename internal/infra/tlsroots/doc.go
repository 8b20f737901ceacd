// Package tlsroots builds the trust store for connections to the CMS API.
//
// The system roots are used by default; api.ca_file adds a private CA, e.g.
// for a staging backend behind a self-signed certificate.
package tlsroots
