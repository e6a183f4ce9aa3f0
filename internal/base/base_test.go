// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package base

import (
	"go/build"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContext(t *testing.T) {
	ctx, err := NewContext(map[string]string{
		"GOOS":        "android",
		"GOARCH":      "arm64",
		"CGO_ENABLED": "0",
		"GOVERSION":   "go1.20.2",
	}, []string{"liveload_dev", ""})
	require.NoError(t, err)

	for _, tag := range []string{"android", "linux", "unix", "arm64", "go1.1", "go1.20", "liveload_dev", build.Default.Compiler} {
		assert.True(t, ctx.Match(tag), tag)
	}
	for _, tag := range []string{"cgo", "go1.21", "darwin", "amd64", ""} {
		assert.False(t, ctx.Match(tag), tag)
	}
}

func TestNewContextZos(t *testing.T) {
	ctx, err := NewContext(map[string]string{
		"GOOS":        "zos",
		"GOARCH":      "s390x",
		"CGO_ENABLED": "1",
		"GOVERSION":   "devel go1.21-abcdef",
	}, nil)
	require.NoError(t, err)
	assert.True(t, ctx.Match("zos"))
	assert.True(t, ctx.Match("unix"))
	assert.True(t, ctx.Match("cgo"))
	assert.True(t, ctx.Match("go1.21"))
}

func TestNewContextInvalid(t *testing.T) {
	_, err := NewContext(map[string]string{"GOOS": "linux"}, nil)
	assert.Error(t, err)

	_, err = NewContext(map[string]string{"GOOS": "linux", "GOARCH": "amd64", "GOVERSION": "gccgo"}, nil)
	assert.Error(t, err)
}

func TestDefaultContext(t *testing.T) {
	ctx := DefaultContext([]string{"extra"})
	assert.Equal(t, build.Default.GOOS, ctx.GOOS)
	assert.True(t, ctx.Match(build.Default.GOOS))
	assert.True(t, ctx.Match(build.Default.GOARCH))
	assert.True(t, ctx.Match("extra"))
}
