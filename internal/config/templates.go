package config

import (
	"fmt"
	"os"
)

func Template() string {
	return template
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const template = `# bitsctl configuration

[decode]
# largest transmission accepted, in bytes (0 = unlimited)
max_bytes = 65536
# deepest packet nesting accepted (0 = unlimited)
max_depth = 4096

[output]
# text | json | yaml | tree
format = "text"

[batch]
workers = 4

[log]
# unset keeps BITSCTL_LOG_LEVEL, or warn
# level = "warn"
`
