package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}

// The API is mounted beside the static site, so the root path is not allowed.
var basePathPattern = regexp.MustCompile(`^/[A-Za-z0-9_-][A-Za-z0-9/_-]*$`)

// Validate checks every section. Errors are keyed by section and field name.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Content),
		validation.Field(&c.Site),
		validation.Field(&c.Build),
		validation.Field(&c.Server),
		validation.Field(&c.API),
		validation.Field(&c.Data),
		validation.Field(&c.Log),
	)
}

func (c ContentConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required, validation.By(safePath)),
		validation.Field(&c.Songs, validation.Required, validation.By(fileName)),
		validation.Field(&c.Albums, validation.Required, validation.By(fileName)),
		validation.Field(&c.Links, validation.Required, validation.By(fileName)),
		validation.Field(&c.About, validation.Required, validation.By(fileName)),
	)
}

func (c SiteConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Timezone, validation.Required, validation.By(func(value interface{}) error {
			if _, err := time.LoadLocation(value.(string)); err != nil {
				return validation.NewError("validation_timezone", "unknown timezone")
			}
			return nil
		})),
	)
}

func (c BuildConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Output, validation.Required, validation.By(safePath)),
	)
}

func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		// 0 asks the OS for a free port.
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.Host, validation.By(noDangerousChars)),
	)
}

func (c APIConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BasePath, validation.Required, validation.Match(basePathPattern).
			Error("must be a path below / containing only letters, digits, '/', '_' or '-'")),
		validation.Field(&c.DefaultPerPage, validation.Min(1)),
		validation.Field(&c.RateLimit, validation.Min(0)),
	)
}

func (c DataConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Format, validation.Required, validation.In(FormatJSON, FormatMarkdown, FormatSQLite)),
		validation.Field(&c.Source,
			validation.When(c.Format != FormatMarkdown, validation.Required),
			validation.By(safePath),
		),
	)
}

func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.Required, validation.In("text", "json")),
	)
}

// safePath rejects traversal and shell metacharacters.
func safePath(value interface{}) error {
	path, _ := value.(string)
	if path == "" {
		return nil
	}

	clean := filepath.Clean(path)
	for _, part := range strings.Split(filepath.ToSlash(clean), "/") {
		if part == ".." {
			return validation.NewError("validation_path_traversal", fmt.Sprintf("path contains traversal: %s", path))
		}
	}
	return noDangerousChars(clean)
}

// fileName accepts a bare file name inside the content directory.
func fileName(value interface{}) error {
	name, _ := value.(string)
	if name == "" {
		return nil
	}
	if filepath.Base(name) != name || name == "." || name == ".." {
		return validation.NewError("validation_file_name", "must be a file name without directories")
	}
	return noDangerousChars(name)
}

func noDangerousChars(value interface{}) error {
	s, _ := value.(string)
	for _, char := range dangerousChars {
		if strings.Contains(s, char) {
			return validation.NewError("validation_dangerous_char", fmt.Sprintf("contains dangerous character: %s", char))
		}
	}
	return nil
}
