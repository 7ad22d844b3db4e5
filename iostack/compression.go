// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : compression.go
package iostack

import (
	"bufio"
	"compress/bzip2"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/cx-luo/chemfiles/chem"
)

// Compression tags the codec applied to the outer transport stream.
// Detected from the outermost path suffix (spec.md §4.1): the remaining
// extension after stripping it determines the chemistry format.
type Compression int

const (
	NoCompression Compression = iota
	Gzip
	Bzip2
	Xz
)

// Auto tells OpenTextCompressed/OpenBinaryCompressed to derive the codec
// from the path's own suffix, the same way OpenText/OpenBinary always
// do. It is never a real codec, only the "no override" value callers
// pass through format.Open when a format string names no explicit
// compression.
const Auto Compression = -1

// ParseCompressionTag parses the compression tag half of a
// "NAME/COMPRESSION" trajectory open string (spec.md §4.2): GZ, BZ2, XZ,
// case-insensitive with optional surrounding spaces.
func ParseCompressionTag(tag string) (Compression, error) {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "GZ", "GZIP":
		return Gzip, nil
	case "BZ2", "BZIP2":
		return Bzip2, nil
	case "XZ", "LZMA":
		return Xz, nil
	default:
		return NoCompression, chem.NewError(chem.ErrFormat, "unknown compression tag %q", tag)
	}
}

// DetectCompression inspects path's outermost extension and returns the
// codec plus the path with that suffix stripped, so format dispatch
// sees the real format extension underneath.
func DetectCompression(path string) (Compression, string) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return Gzip, strings.TrimSuffix(path, ".gz")
	case strings.HasSuffix(path, ".bz2"):
		return Bzip2, strings.TrimSuffix(path, ".bz2")
	case strings.HasSuffix(path, ".xz"):
		return Xz, strings.TrimSuffix(path, ".xz")
	default:
		return NoCompression, path
	}
}

// decompressReader wraps r with the codec's decompressor. Every codec
// here supports read; only gzip and xz additionally support write
// (bzip2 write is not offered, see newCompressedWriter).
func decompressReader(c Compression, r io.Reader) (io.Reader, error) {
	switch c {
	case NoCompression:
		return bufio.NewReader(r), nil
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, chem.WrapError(chem.ErrFile, err, "failed to open gzip stream")
		}
		return gz, nil
	case Bzip2:
		return bzip2.NewReader(r), nil
	case Xz:
		xr, err := xz.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, chem.WrapError(chem.ErrFile, err, "failed to open xz stream")
		}
		return xr, nil
	default:
		return nil, chem.NewError(chem.ErrFile, "unknown compression codec %d", c)
	}
}

// compressedWriteCloser lets callers Close a compressing writer, which
// for gzip/xz must flush trailer bytes.
type compressedWriteCloser struct {
	io.Writer
	closer func() error
}

func (w compressedWriteCloser) Close() error {
	if w.closer != nil {
		return w.closer()
	}
	return nil
}

// newCompressedWriter wraps w with the codec's compressor. Bzip2 has no
// write-capable implementation in the dependency set this module draws
// from, so Write mode on a .bz2 path is rejected with a FileError
// rather than silently falling back to an uncompressed stream.
func newCompressedWriter(c Compression, w io.Writer) (io.WriteCloser, error) {
	switch c {
	case NoCompression:
		return compressedWriteCloser{Writer: w}, nil
	case Gzip:
		gz := gzip.NewWriter(w)
		return compressedWriteCloser{Writer: gz, closer: gz.Close}, nil
	case Xz:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, chem.WrapError(chem.ErrFile, err, "failed to open xz writer")
		}
		return compressedWriteCloser{Writer: xw, closer: xw.Close}, nil
	case Bzip2:
		return nil, chem.NewError(chem.ErrFile, "writing bzip2 streams is not supported")
	default:
		return nil, chem.NewError(chem.ErrFile, "unknown compression codec %d", c)
	}
}

// SupportsSeek reports whether a compression codec allows arbitrary
// seeking on the decompressed stream. None of the codecs here do once
// compressed; callers needing seek on a compressed trajectory must scan
// once and cache step offsets themselves (spec.md §4.1).
func (c Compression) SupportsSeek() bool { return c == NoCompression }
