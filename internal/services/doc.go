// Package services defines the shared error taxonomy and context helpers used
// across the extraction pipeline. Stage implementations wrap their failures
// with the sentinel markers declared here so the CLI can map any error to a
// stable process exit code.
package services
