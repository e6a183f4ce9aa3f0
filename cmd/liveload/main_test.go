// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/zosopentools/liveload/internal/base"
	"github.com/zosopentools/liveload/internal/gen"
)

const fixture = `
-- app.go --
package app

import "github.com/zosopentools/liveload"

//liveload:str greeting.txt
var greeting liveload.Text
-- greeting.txt --
Hello, world!
`

func extract(t *testing.T, archive string) string {
	t.Helper()

	dir := t.TempDir()
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, f.Data, 0644))
	}
	return dir
}

func runCmd(t *testing.T, env map[string]string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, envconfig.MapLookuper(env))
	return code, stdout.String(), stderr.String()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunTagged(t *testing.T) {
	dir := extract(t, fixture)

	code, _, stderr := runCmd(t, nil, dir)
	require.Equal(t, exitOK, code, stderr)

	embed := readFile(t, filepath.Join(dir, gen.EmbedFile))
	assert.Contains(t, embed, "//go:build !liveload_dev")
	assert.Contains(t, embed, `"Hello, world!\n"`)

	runtime := readFile(t, filepath.Join(dir, gen.RuntimeFile))
	assert.Contains(t, runtime, "//go:build liveload_dev")
	assert.Contains(t, runtime, "liveload.RuntimeText(")
}

func TestRunFlagsOverrideEnvironment(t *testing.T) {
	dir := extract(t, fixture)
	env := map[string]string{"LIVELOAD_MODE": "runtime"}

	code, _, stderr := runCmd(t, env, dir)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, readFile(t, filepath.Join(dir, gen.DefaultOutput)), "liveload.RuntimeText(")

	code, _, stderr = runCmd(t, env, "-mode", "embed", dir)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, readFile(t, filepath.Join(dir, gen.DefaultOutput)), "liveload.EmbedText(")
}

func TestRunConfigFile(t *testing.T) {
	dir := extract(t, fixture)
	config := filepath.Join(t.TempDir(), "liveload.yaml")
	require.NoError(t, os.WriteFile(config, []byte("mode: embed\noutput: assets_gen.go\n"), 0644))

	code, _, stderr := runCmd(t, nil, "-config", config, dir)
	require.Equal(t, exitOK, code, stderr)
	assert.FileExists(t, filepath.Join(dir, "assets_gen.go"))
	assert.NoFileExists(t, filepath.Join(dir, gen.EmbedFile))

	code, _, _ = runCmd(t, nil, "-config", filepath.Join(t.TempDir(), "missing.yaml"), dir)
	assert.Equal(t, exitUsage, code)
}

func TestRunEmbedFailureReport(t *testing.T) {
	dir := extract(t, fixture)
	require.NoError(t, os.Remove(filepath.Join(dir, "greeting.txt")))

	code, stdout, stderr := runCmd(t, nil, "-mode", "embed", "-json", dir)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr, "generation failed")
	assert.NoFileExists(t, filepath.Join(dir, gen.DefaultOutput))

	var report base.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "embed", report.Mode)
	require.Len(t, report.Packages, 1)
	assert.Contains(t, report.Packages[0].Error, `file not found in load_str("greeting.txt")`)

	// The runtime shape builds regardless
	code, _, stderr = runCmd(t, nil, "-mode", "runtime", dir)
	assert.Equal(t, exitOK, code, stderr)

	code, _, _ = runCmd(t, nil, "-mode", "runtime", "-check", dir)
	assert.Equal(t, exitFailed, code)
}

func TestRunDryRun(t *testing.T) {
	dir := extract(t, fixture)

	code, stdout, stderr := runCmd(t, nil, "-n", "-json", dir)
	require.Equal(t, exitOK, code, stderr)
	assert.NoFileExists(t, filepath.Join(dir, gen.EmbedFile))

	var report base.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Packages, 1)
	require.Len(t, report.Packages[0].Files, 2)
	assert.False(t, report.Packages[0].Files[0].Written)
	require.Len(t, report.Packages[0].Sites, 1)
	assert.Equal(t, filepath.Join(dir, "greeting.txt"), report.Packages[0].Sites[0].Path)
}

func TestRunUsage(t *testing.T) {
	code, stdout, _ := runCmd(t, nil, "-help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Usage:")

	code, stdout, _ = runCmd(t, nil, "-version")
	assert.Equal(t, exitOK, code)
	assert.NotEmpty(t, stdout)

	code, _, _ = runCmd(t, nil, "-nope")
	assert.Equal(t, exitUsage, code)

	code, _, stderr := runCmd(t, nil, "-mode", "dev", t.TempDir())
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "invalid configuration")
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitTags(" a,,b "))
	assert.Nil(t, splitTags(""))
}

func TestPackageDirsDeduplicates(t *testing.T) {
	dir := extract(t, fixture)

	dirs, err := packageDirs([]string{dir, dir + string(filepath.Separator)}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, dirs)
}
