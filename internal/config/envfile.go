package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ReadEnvFile parses a KEY=VALUE file. Any failure to open or read it is
// wrapped in ErrEnvFileUnreadable and no entries are returned.
func ReadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvFileUnreadable, err)
	}
	defer f.Close()

	entries, err := ParseEnv(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEnvFileUnreadable, path, err)
	}
	return entries, nil
}

// ParseEnv reads KEY=VALUE lines. Blank lines and lines starting with '#'
// are ignored, the first '=' separates key from value, and a key seen twice
// keeps its last value. Lines without '=' or with an empty key are skipped.
func ParseEnv(r io.Reader) (map[string]string, error) {
	entries := make(map[string]string)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}
		value = strings.TrimSpace(value)

		entries[key] = decodeValue(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// decodeValue unquotes a value wrapped in matching quotes using dotenv rules.
// Unquoted values are returned untouched so '$' and '#' survive verbatim.
func decodeValue(value string) string {
	if !isQuoted(value) {
		return value
	}

	parsed, err := godotenv.Unmarshal("K=" + value)
	if err != nil {
		return value
	}
	if decoded, ok := parsed["K"]; ok {
		return decoded
	}
	return value
}

func isQuoted(value string) bool {
	if len(value) < 2 {
		return false
	}
	first, last := value[0], value[len(value)-1]
	return (first == '"' || first == '\'') && first == last
}
