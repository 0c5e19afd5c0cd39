package config

import "errors"

// ErrEnvFileUnreadable is reported when the environment file cannot be opened
// or read. Loading continues with the settings resolved so far.
var ErrEnvFileUnreadable = errors.New("could not load environment file, using defaults")
