// Package output renders command results.
//
//   - formatter.go: Formatter interface, format parsing, Printer
//   - table.go: aligned tables built from structs, slices and maps
//   - json.go, yaml.go: machine-readable output
//   - spinner.go, progress.go: terminal feedback for slow calls and uploads
//
// Table output hides fields tagged `table:"-"` and shows fields tagged
// `table:"wide"` only in wide mode. Headers come from the json tag.
package output
