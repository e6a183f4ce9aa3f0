// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package liveload

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

type LoadTestSuite struct {
	suite.Suite

	dir string

	// Pretend source file declaring the call sites
	source string
}

func (s *LoadTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.source = filepath.Join(s.dir, "app.go")

	s.write("greeting.txt", []byte("Hello, world!\n"))
	s.write("latin1.txt", []byte{'c', 'a', 'f', 0xe9})
	s.write("empty.txt", nil)
}

func (s *LoadTestSuite) write(name string, data []byte) string {
	path := filepath.Join(s.dir, filepath.FromSlash(name))
	s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0755))
	s.Require().NoError(os.WriteFile(path, data, 0644))
	return path
}

func (s *LoadTestSuite) TestLoadStr() {
	got, err := LoadStr(s.source, "greeting.txt")
	s.Require().NoError(err)
	s.Equal("Hello, world!\n", got)

	got, err = LoadStr(s.source, "empty.txt")
	s.Require().NoError(err)
	s.Equal("", got)
}

func (s *LoadTestSuite) TestLoadBytesExact() {
	want := []byte{0, 1, 2, 0xff, '\n', 0xfe}
	s.write("data/blob.bin", want)

	got, err := LoadBytes(s.source, "data/blob.bin")
	s.Require().NoError(err)
	s.Equal(want, got)
}

func (s *LoadTestSuite) TestInvalidText() {
	_, err := LoadStr(s.source, "latin1.txt")
	s.Require().Error(err)
	s.ErrorIs(err, ErrInvalidText)
	s.Contains(err.Error(), `invalid utf8 in load_str("latin1.txt")`)

	raw, err := LoadBytes(s.source, "latin1.txt")
	s.Require().NoError(err)
	s.Equal([]byte{'c', 'a', 'f', 0xe9}, raw)
}

func (s *LoadTestSuite) TestMissingFile() {
	_, err := LoadStr(s.source, "missing.txt")
	s.Require().Error(err)
	s.ErrorIs(err, ErrNotFound)

	var lerr *LoadError
	s.Require().ErrorAs(err, &lerr)
	s.Equal("load_str", lerr.Op)
	s.Equal("missing.txt", lerr.Literal)
	s.Equal(filepath.Join(s.dir, "missing.txt"), lerr.Path)
	s.Contains(err.Error(), `file not found in load_str("missing.txt"): `+lerr.Path)

	_, err = LoadBytes(s.source, "missing.txt")
	s.ErrorIs(err, ErrNotFound)
	s.Contains(err.Error(), `load_bytes("missing.txt")`)
}

func (s *LoadTestSuite) TestDirectoryIsUnreadable() {
	s.Require().NoError(os.Mkdir(filepath.Join(s.dir, "folder"), 0755))

	_, err := LoadBytes(s.source, "folder")
	s.ErrorIs(err, ErrUnreadable)
}

func (s *LoadTestSuite) TestPermissionDenied() {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		s.T().Skip("file permissions are not enforced")
	}
	path := s.write("secret.txt", []byte("secret"))
	s.Require().NoError(os.Chmod(path, 0))

	_, err := LoadStr(s.source, "secret.txt")
	s.ErrorIs(err, ErrUnreadable)
}

func (s *LoadTestSuite) TestInvalidSource() {
	_, err := LoadStr("relative/app.go", "greeting.txt")
	s.ErrorIs(err, ErrInvalidSource)
	s.Contains(err.Error(), `invalid source file path in load_str("greeting.txt")`)
}

func (s *LoadTestSuite) TestReadsReflectCurrentContent() {
	path := filepath.Join(s.dir, "greeting.txt")
	for i := 0; i < 3; i++ {
		want := fmt.Sprintf("version %d\n", i)
		s.write("greeting.txt", []byte(want))

		got, err := ReadText(path)
		s.Require().NoError(err)
		s.Equal(want, got)
	}
}

func (s *LoadTestSuite) TestConcurrentReads() {
	path := filepath.Join(s.dir, "greeting.txt")

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			got, err := ReadText(path)
			if err != nil {
				return err
			}
			if got != "Hello, world!\n" {
				return fmt.Errorf("unexpected content %q", got)
			}
			return nil
		})
	}
	s.NoError(g.Wait())
}

func TestLoadTestSuite(t *testing.T) {
	suite.Run(t, new(LoadTestSuite))
}

func TestReadErrorsWithoutCallSite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")

	_, err := ReadBytes(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "file not found: "+path+": no such file or directory", err.Error())
}
