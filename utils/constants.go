// File: utils/constants.go
package utils

import "time"

// SessionCachePrefix is the prefix used for Redis session keys.
const SessionCachePrefix = "schedule:session:"

// SubmitLockSuffix marks the key holding a session's submit-in-flight flag.
const SubmitLockSuffix = ":submitting"

// SubmitLockTTL bounds how long a crashed submission can hold the flag.
const SubmitLockTTL = 2 * time.Minute

// DateLayout is the form of every selected date.
const DateLayout = "2006-01-02"
