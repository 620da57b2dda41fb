package constants

// Default database retry values
const (
	DefaultDatabaseRetryAttempts = 3
	DefaultRetryBackoffMs        = 1000
	DefaultMaxBackoffMs          = 60000
)

// Storage encryption values
const (
	EncryptionSalt       = "waingest-storage-v1"
	EncryptionLookupSalt = "waingest-lookup-v1"
)

// Privacy settings
const (
	DefaultJIDMaskLength   = 4
	DefaultMessageIDLength = 8
)
