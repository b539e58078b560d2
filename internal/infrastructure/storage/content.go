package storage

import (
	"bufio"
	"io"
	"net/http"
	"strings"
)

const sniffLen = 512

// Sniff detects the content type from the leading bytes of r.
// The returned reader yields the full stream, including the sniffed prefix.
func Sniff(r io.Reader) (string, io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", nil, err
	}
	ct := http.DetectContentType(head)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct, br, nil
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ExtensionFor maps an image content type to a file extension, "" if unknown.
func ExtensionFor(contentType string) string {
	return extensions[contentType]
}
