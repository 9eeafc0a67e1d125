package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v, c, d := Info()
	assert.Equal(t, "dev", v)
	assert.Equal(t, "unknown", c)
	assert.Equal(t, "unknown", d)
}

func TestLinkerOverrides(t *testing.T) {
	oldVersion, oldCommit, oldDate := version, commit, date
	t.Cleanup(func() { version, commit, date = oldVersion, oldCommit, oldDate })

	version, commit, date = "v1.2.0", "abc123", "2026-10-16"

	assert.Equal(t, "v1.2.0", GetVersion())
	assert.Equal(t, "abc123", GetCommit())
	assert.Equal(t, "2026-10-16", GetDate())
	assert.Equal(t, "version=v1.2.0 commit=abc123 date=2026-10-16", String())
}
