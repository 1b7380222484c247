package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/cyffff/riskai/pkg/cli/config"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadPolicyFile(t *testing.T) {
	t.Run("valid policy", func(t *testing.T) {
		path := writePolicyFile(t, `
[policy]
high_threshold = 90.0
medium_threshold = 60.0
`)
		policy, err := config.LoadPolicyFile(path)
		gt.NoError(t, err).Required()
		gt.Value(t, policy.HighThreshold).Equal(90.0)
		gt.Value(t, policy.MediumThreshold).Equal(60.0)
	})

	t.Run("partial policy keeps defaults", func(t *testing.T) {
		path := writePolicyFile(t, `
[policy]
high_threshold = 95.0
`)
		policy, err := config.LoadPolicyFile(path)
		gt.NoError(t, err).Required()
		gt.Value(t, policy.HighThreshold).Equal(95.0)
		gt.Value(t, policy.MediumThreshold).Equal(50.0)
	})

	t.Run("inverted thresholds are rejected", func(t *testing.T) {
		path := writePolicyFile(t, `
[policy]
high_threshold = 30.0
medium_threshold = 60.0
`)
		_, err := config.LoadPolicyFile(path)
		gt.Error(t, err)
	})

	t.Run("out-of-range thresholds are rejected", func(t *testing.T) {
		path := writePolicyFile(t, `
[policy]
high_threshold = 120.0
`)
		_, err := config.LoadPolicyFile(path)
		gt.Error(t, err)
	})

	t.Run("malformed TOML is rejected", func(t *testing.T) {
		path := writePolicyFile(t, `[policy`)
		_, err := config.LoadPolicyFile(path)
		gt.Error(t, err)
	})

	t.Run("missing file is rejected", func(t *testing.T) {
		_, err := config.LoadPolicyFile("/does/not/exist.toml")
		gt.Error(t, err)
	})
}
