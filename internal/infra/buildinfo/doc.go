// Package buildinfo exposes version information injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/cmsadmin/internal/infra/buildinfo.Version=v1.2.0 \
//	  -X github.com/yndnr/cmsadmin/internal/infra/buildinfo.Commit=abc123"
//
// The same values form the User-Agent sent to the CMS API.
package buildinfo
