// Package constants provides shared constants used across the codebase.
package constants

import "time"

// File upload constants
const (
	// MultipartMemory is how much of a multipart upload is held in memory
	// before spilling to temporary files (32MB)
	MultipartMemory = 32 << 20

	// MaxFilesPerUpload caps the number of files in one upload request
	MaxFilesPerUpload = 100
)

// Request body constants
const (
	// MaxJSONBodySize is the maximum accepted size of a JSON request body (1MB)
	MaxJSONBodySize = 1 << 20
)

// Job constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100

	// SSEHeartbeatInterval is how often an idle event stream is pinged
	SSEHeartbeatInterval = 15 * time.Second

	// JobRetention is how long a finished export job and its archive are kept
	// for download
	JobRetention = 30 * time.Minute
)
