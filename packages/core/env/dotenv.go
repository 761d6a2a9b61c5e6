package env

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var dotEnvRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadDotEnv reads a .env file. Nothing is exported to the OS environment.
func LoadDotEnv(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening env file: %w", err)
	}
	defer file.Close()

	vars, err := ParseDotEnv(file)
	if err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return vars, nil
}

// ParseDotEnv parses KEY=value lines with an optional "export " prefix.
// Blank lines, # comments and lines without '=' are ignored. Single quotes
// keep the value literal. Double quotes turn \n into a newline. Unquoted
// and double-quoted values expand ${KEY} from keys defined earlier in the
// same input.
func ParseDotEnv(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, raw, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		if key == "" {
			continue
		}
		vars[key] = dotEnvValue(strings.TrimSpace(raw), vars)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

func dotEnvValue(raw string, defined map[string]string) string {
	quote := byte(0)
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		quote = raw[0]
		raw = raw[1 : len(raw)-1]
	}

	switch quote {
	case '\'':
		return raw
	case '"':
		raw = strings.ReplaceAll(raw, `\n`, "\n")
	}
	return dotEnvRef.ReplaceAllStringFunc(raw, func(ref string) string {
		name := ref[2 : len(ref)-1]
		if v, ok := defined[name]; ok {
			return v
		}
		return ref
	})
}
