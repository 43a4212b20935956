package site

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/net/html"
)

// StripComments removes every HTML comment from doc and leaves all other
// bytes as they were, including whitespace and script bodies.
func StripComments(doc []byte) ([]byte, error) {
	z := html.NewTokenizer(bytes.NewReader(doc))
	var buf bytes.Buffer
	buf.Grow(len(doc))

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return buf.Bytes(), nil
			}
			return nil, z.Err()
		case html.CommentToken:
			continue
		default:
			buf.Write(z.Raw())
		}
	}
}
