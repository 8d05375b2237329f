package pretty

import (
	"errors"
	"strings"
	"testing"

	"github.com/hesusruiz/mew/mew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts []Option
		want string
	}{
		{
			name: "Nesting",
			in:   `<div class="a"><p>Hello <b>world</b></p></div>`,
			want: "<div class=\"a\">\n    <p>\n        Hello\n        <b>\n            world\n        </b>\n    </p>\n</div>\n",
		},
		{
			name: "Self-closing elements keep the depth",
			in:   `<!DOCTYPE html><head><meta charset="utf-8"><link rel="stylesheet" href="s.css"></head>`,
			want: "<!DOCTYPE html>\n<head>\n    <meta charset=\"utf-8\">\n    <link rel=\"stylesheet\" href=\"s.css\">\n</head>\n",
		},
		{
			name: "Custom indent",
			in:   `<ul><li>a</li><li>b<br/></li></ul>`,
			opts: []Option{WithIndent(2)},
			want: "<ul>\n  <li>\n    a\n  </li>\n  <li>\n    b\n    <br/>\n  </li>\n</ul>\n",
		},
		{
			name: "Raw elements are untouched",
			in:   "<body><pre>a\n  <b>b</b>\n</pre><script>if (a < b) { go() }</script><textarea> x </textarea></body>",
			want: "<body>\n    <pre>a\n  <b>b</b>\n</pre>\n    <script>if (a < b) { go() }</script>\n    <textarea> x </textarea>\n</body>\n",
		},
		{
			name: "Comments",
			in:   `<div><!-- note --></div>`,
			want: "<div>\n    <!-- note -->\n</div>\n",
		},
		{
			name: "Whitespace only text is dropped",
			in:   "<div>\n   \n<span>x</span>  </div>",
			want: "<div>\n    <span>\n        x\n    </span>\n</div>\n",
		},
		{
			name: "Empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.in, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTokenLimit(t *testing.T) {
	_, err := Format(`<div class="a very long attribute value"></div>`, WithMaxBuf(8))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenize))
}

// tags returns the sequence of tag names of a document
func tags(t *testing.T, s string) []string {
	t.Helper()
	var names []string
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return names
		}
		if tt == html.StartTagToken || tt == html.EndTagToken {
			name, _ := z.TagName()
			names = append(names, string(name))
		}
	}
}

func TestFormatRenderedDocument(t *testing.T) {
	src := "doctype\nhtml\n  head\n    charset utf-8\n  body\n    section.main\n      p Hello\n      img a.png Alt\n      a /home Home"
	compact, err := mew.Render(src)
	require.NoError(t, err)

	got, err := Format(compact)
	require.NoError(t, err)

	// Formatting only changes whitespace between nodes
	assert.Equal(t, tags(t, compact), tags(t, got))
	assert.Contains(t, got, "\n            <img src=\"a.png\" alt=\"Alt\">\n")
	assert.Contains(t, got, "\n    </body>\n</html>\n")
}
