package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/psmith94/gates-bubbles/internal/scale"
)

var validate = validator.New()

// Validate checks field ranges and the cross-field rules the tags cannot
// express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if _, err := scale.New(c.ScaleOptions(), 1); err != nil {
		return fmt.Errorf("config: scale: %w", err)
	}
	seen := map[string]bool{"all": true, "year": true}
	for _, m := range c.Layout.Modes {
		if seen[m.Key] {
			return fmt.Errorf("config: layout.modes: duplicate key %q", m.Key)
		}
		seen[m.Key] = true
	}
	if !seen[c.Layout.DefaultMode] {
		return fmt.Errorf("config: layout.default_mode: unknown mode %q", c.Layout.DefaultMode)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s (got %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}
