package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("REDACTOR_MAX_OPTIMIZE", "")
		t.Setenv("REDACTOR_RULES_TIMEOUT", "")
		t.Setenv("REDACTOR_RULES_SCRIPT", "")

		cfg, err := ReadConfig()
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxOptimize, cfg.MaxOptimize)
		assert.Equal(t, 10*time.Second, cfg.RulesTimeoutDuration())
	})

	t.Run("from environment", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), "rules.lua")
		require.NoError(t, os.WriteFile(script, []byte("return"), 0o600))

		t.Setenv("REDACTOR_TRACE", "true")
		t.Setenv("REDACTOR_MAX_OPTIMIZE", "20")
		t.Setenv("REDACTOR_SANITIZE", "1")
		t.Setenv("REDACTOR_MINIFY", "false")
		t.Setenv("REDACTOR_RULES_SCRIPT", script)
		t.Setenv("REDACTOR_RULES_TIMEOUT", "3")

		cfg, err := ReadConfig()
		require.NoError(t, err)
		assert.Equal(t, &Config{
			Trace:        true,
			MaxOptimize:  20,
			Sanitize:     true,
			Minify:       false,
			RulesScript:  script,
			RulesTimeout: 3,
		}, cfg)
	})

	t.Run("out of range", func(t *testing.T) {
		t.Setenv("REDACTOR_MAX_OPTIMIZE", "5000")
		_, err := ReadConfig()
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "MaxOptimize", verrs[0].Field())
	})

	t.Run("malformed number", func(t *testing.T) {
		t.Setenv("REDACTOR_MAX_OPTIMIZE", "many")
		_, err := ReadConfig()
		assert.ErrorContains(t, err, "REDACTOR_MAX_OPTIMIZE")
	})

	t.Run("missing script", func(t *testing.T) {
		t.Setenv("REDACTOR_MAX_OPTIMIZE", "")
		t.Setenv("REDACTOR_RULES_SCRIPT", filepath.Join(t.TempDir(), "none.lua"))
		_, err := ReadConfig()
		assert.Error(t, err)
	})
}
