package parser

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// utf8BOM is stripped from the first header cell.
const utf8BOM = "\ufeff"

// NewDecodedReader wraps r with the decompressor selected by the extension
// of name and with charset decoding. The returned close func releases the
// decoders; it does not close r.
func NewDecodedReader(r io.Reader, name, charset string) (io.Reader, func() error, error) {
	dec, err := CharsetDecoder(charset)
	if err != nil {
		return nil, nil, err
	}

	plain, closeFunc, err := decompress(r, name)
	if err != nil {
		return nil, nil, err
	}
	if closeFunc == nil {
		closeFunc = func() error { return nil }
	}

	if dec != nil {
		plain = dec.Reader(plain)
	}
	return plain, closeFunc, nil
}

func decompress(r io.Reader, name string) (io.Reader, func() error, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz", ".gzip":
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case ".zst", ".zstd":
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error { decoder.Close(); return nil }, nil

	case ".xz":
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzReader, nil, nil

	case ".lz4":
		return lz4.NewReader(r), nil, nil

	default:
		return r, nil, nil
	}
}

// CharsetDecoder returns the decoder for a charset name.
// UTF-8 (or an empty name) returns nil: the bytes are used as-is.
func CharsetDecoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder(), nil
	case "koi8-r", "koi8r":
		return charmap.KOI8R.NewDecoder(), nil
	case "iso-8859-5":
		return charmap.ISO8859_5.NewDecoder(), nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}
