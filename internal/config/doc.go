// Package config resolves the flat setting mapping used by a single run from
// built-in defaults, an optional YAML file, an optional KEY=VALUE environment
// file and CLI flags, with precedence: CLI flags > environment file > YAML
// config > Defaults. The resulting Config is immutable.
package config
