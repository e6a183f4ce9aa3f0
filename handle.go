// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package liveload

// A site is one expanded call site. It is created by generated code and
// never changes afterwards.
type site struct {
	literal string
	path    string
	mode    Mode

	// Embedded content, unused in Runtime mode
	data string
}

func (s *site) describe() (literal, path string, mode Mode) {
	if s == nil {
		return "", "", Embed
	}
	return s.literal, s.path, s.mode
}

// Text is a call site of load_str: declared with a //liveload:str directive
// and assigned by generated code.
//
//	//liveload:str greeting.txt
//	var greeting liveload.Text
type Text struct {
	s *site
}

// EmbedText is used by generated code for an embedded text call site.
func EmbedText(literal, path, content string) Text {
	return Text{&site{literal: literal, path: path, mode: Embed, data: content}}
}

// RuntimeText is used by generated code for a call site read on every Load.
func RuntimeText(literal, path string) Text {
	return Text{&site{literal: literal, path: path, mode: Runtime}}
}

// Load returns the file content. In Embed mode this is always the content
// captured during generation. In Runtime mode the file is opened, read and
// validated as UTF-8 on each call.
func (t Text) Load() (string, error) {
	if t.s == nil {
		return "", &LoadError{Op: KindText.Op(), Err: ErrNotGenerated}
	}
	if t.s.mode == Embed {
		return t.s.data, nil
	}

	contents, err := ReadText(t.s.path)
	if err != nil {
		return "", annotate(err, KindText, t.s.literal, t.s.path)
	}
	return contents, nil
}

// MustLoad is like Load but panics on failure.
func (t Text) MustLoad() string {
	contents, err := t.Load()
	if err != nil {
		panic(err.Error())
	}
	return contents
}

// Generated reports whether generated code has assigned this handle.
func (t Text) Generated() bool { return t.s != nil }

// Literal is the path as written in the directive.
func (t Text) Literal() string {
	literal, _, _ := t.s.describe()
	return literal
}

// Path is the resolved absolute path.
func (t Text) Path() string {
	_, path, _ := t.s.describe()
	return path
}

func (t Text) Mode() Mode {
	_, _, mode := t.s.describe()
	return mode
}

// Bytes is a call site of load_bytes: declared with a //liveload:bytes
// directive and assigned by generated code.
type Bytes struct {
	s *site
}

// EmbedBytes is used by generated code for an embedded bytes call site.
func EmbedBytes(literal, path, content string) Bytes {
	return Bytes{&site{literal: literal, path: path, mode: Embed, data: content}}
}

// RuntimeBytes is used by generated code for a call site read on every Load.
func RuntimeBytes(literal, path string) Bytes {
	return Bytes{&site{literal: literal, path: path, mode: Runtime}}
}

// Load returns the raw file content without any validation. Each call
// returns a new slice, callers may modify it.
func (b Bytes) Load() ([]byte, error) {
	if b.s == nil {
		return nil, &LoadError{Op: KindBytes.Op(), Err: ErrNotGenerated}
	}
	if b.s.mode == Embed {
		return []byte(b.s.data), nil
	}

	contents, err := ReadBytes(b.s.path)
	if err != nil {
		return nil, annotate(err, KindBytes, b.s.literal, b.s.path)
	}
	return contents, nil
}

// MustLoad is like Load but panics on failure.
func (b Bytes) MustLoad() []byte {
	contents, err := b.Load()
	if err != nil {
		panic(err.Error())
	}
	return contents
}

func (b Bytes) Generated() bool { return b.s != nil }

func (b Bytes) Literal() string {
	literal, _, _ := b.s.describe()
	return literal
}

func (b Bytes) Path() string {
	_, path, _ := b.s.describe()
	return path
}

func (b Bytes) Mode() Mode {
	_, _, mode := b.s.describe()
	return mode
}
