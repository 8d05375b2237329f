package config

import (
	"errors"
	"testing"

	"github.com/hesusruiz/mew/mew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontMatter(t *testing.T) {
	src := "---\r\npretty: true\r\nvariables:\r\n  title: Hello\r\n  n: 3\r\n---\r\np {{title}} {{n}}\r\n"

	fm, body, err := SplitFrontMatter(src)
	require.NoError(t, err)
	require.NotNil(t, fm)

	assert.Equal(t, map[string]string{"title": "Hello", "n": "3"}, fm.Variables)
	require.NotNil(t, fm.Pretty)
	assert.True(t, *fm.Pretty)
	assert.Nil(t, fm.Strict)
	assert.True(t, fm.PrettyOr(false))
	assert.Equal(t, "p {{title}} {{n}}\n", body)

	got, err := mew.Render(body, fm.Options()...)
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello 3</p>", got)
}

func TestSplitFrontMatterAbsent(t *testing.T) {
	src := "p no metadata\n---\n"

	fm, body, err := SplitFrontMatter(src)
	require.NoError(t, err)
	assert.Nil(t, fm)
	assert.Equal(t, src, body)
	assert.Nil(t, fm.Options())
	assert.True(t, fm.PrettyOr(true))
}

func TestSplitFrontMatterOverridesConfig(t *testing.T) {
	fm, body, err := SplitFrontMatter("---\nstrict: true\nvariables:\n  who: doc\n---\np {{who}} {{other}}")
	require.NoError(t, err)

	opts := append([]mew.Option{mew.WithVariables(map[string]string{"who": "config"})}, fm.Options()...)
	_, err = mew.Render(body, opts...)
	assert.True(t, errors.Is(err, mew.ErrUnresolvedVariable))

	got, err := mew.Render("p {{who}}", opts...)
	require.NoError(t, err)
	assert.Equal(t, "<p>doc</p>", got)
}

func TestSplitFrontMatterErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "Unterminated", src: "---\ntitle: x\np body"},
		{name: "Malformed YAML", src: "---\ntitle: [x\n---\np body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SplitFrontMatter(tt.src)
			assert.True(t, errors.Is(err, ErrFrontMatter), "got %v", err)
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		encoding string
		want     string
	}{
		{name: "Default is UTF-8", raw: []byte("p café"), encoding: "", want: "p café"},
		{name: "UTF-8 byte order mark", raw: []byte("\xef\xbb\xbfp x"), encoding: "utf-8", want: "p x"},
		{name: "Latin-1", raw: []byte("p caf\xe9"), encoding: "latin1", want: "p café"},
		{name: "Windows-1252", raw: []byte("p \x93q\x94"), encoding: "windows-1252", want: "p “q”"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw, tt.encoding)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Decode([]byte("x"), "klingon")
	assert.True(t, errors.Is(err, ErrUnknownEncoding))
}
