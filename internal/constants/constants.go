// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Export constants
const (
	// ArchiveContentType is the response type for the page archive
	ArchiveContentType = "application/zip"

	// ProofContentType is the response type for the merged proof
	ProofContentType = "application/pdf"
)

// Session constants
const (
	// SessionCookieName is the cookie carrying the signed session ID
	SessionCookieName = "photobook_session"
)
