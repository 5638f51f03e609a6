package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevision(t *testing.T) {
	assert.Equal(t, "", Info{}.Revision())
	assert.Equal(t, "0123abcd", Info{VCSRevision: "0123abcdef456"}.Revision())
	assert.Equal(t, "abc (modified)", Info{VCSRevision: "abc", VCSModified: true}.Revision())
}

func TestString(t *testing.T) {
	i := Info{Version: "1.2.0", BuildTime: "unknown", GoVersion: "go1.25", VCSRevision: "0123abcdef"}
	assert.Equal(t, "1.2.0, commit 0123abcd, go1.25", i.String())

	i.BuildTime = "2026-10-01"
	assert.Equal(t, "1.2.0, commit 0123abcd, built 2026-10-01, go1.25", i.String())
}

func TestFields(t *testing.T) {
	assert.Len(t, Info{Version: "dev"}.Fields(), 1)
	assert.Len(t, Info{Version: "dev", VCSRevision: "abc", GoVersion: "go1.25"}.Fields(), 3)
}

func TestCheck(t *testing.T) {
	assert.Empty(t, Info{Version: "1.0.0", VCSRevision: "abc"}.Check())
	assert.Contains(t, Info{Version: "dev"}.Check(), "development build")
	assert.Contains(t, Info{Version: "1.0.0", VCSRevision: "abcdef", VCSModified: true}.Check(), "modified")
}

func TestGet(t *testing.T) {
	i := Get()
	assert.Equal(t, Version, i.Version)
	assert.Equal(t, BuildTime, i.BuildTime)
}
