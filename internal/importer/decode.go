package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// newUTF8Reader decodes spreadsheet exports to UTF-8. A BOM wins, then
// valid UTF-8 passes through, then chardet's best guess, and anything else
// is read as Windows-1252, which is what Excel writes on Spanish Windows.
func newUTF8Reader(r io.Reader) (*bufio.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decodeWith(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decodeWith(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	case utf8.Valid(completeRunes(buf)):
		return br, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		switch result.Charset {
		case "UTF-8":
			return br, nil
		case "ISO-8859-15":
			return decodeWith(br, charmap.ISO8859_15.NewDecoder()), nil
		}
	}

	return decodeWith(br, charmap.Windows1252.NewDecoder()), nil
}

// completeRunes drops a multi-byte sequence cut off by the sniff window.
func completeRunes(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}

		if !utf8.FullRune(b[i:]) {
			return b[:i]
		}

		break
	}

	return b
}

func decodeWith(r io.Reader, t transform.Transformer) *bufio.Reader {
	return bufio.NewReaderSize(transform.NewReader(r, t), sniffSize)
}

// detectDelimiter picks ';' or ',' by counting both in the first line.
// Excel uses ';' in locales where ',' is the decimal separator.
func detectDelimiter(br *bufio.Reader) rune {
	buf, _ := br.Peek(sniffSize)

	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		buf = buf[:i]
	}

	if bytes.Count(buf, []byte{';'}) > bytes.Count(buf, []byte{','}) {
		return ';'
	}

	return ','
}
