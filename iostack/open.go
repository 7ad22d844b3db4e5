// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : open.go
package iostack

import (
	"io"
	"os"

	"github.com/cx-luo/chemfiles/chem"
)

// composedStream glues a transport (disk file or MemoryBuffer) to a
// compression codec. Seek is only meaningful, and only exposed to
// TextFile/BinaryFile, when seekable is set by the caller (no
// compression, transport itself seekable).
type composedStream struct {
	transport io.Closer
	reader    io.Reader
	writer    io.WriteCloser
	seeker    io.Seeker
}

func (s *composedStream) Read(p []byte) (int, error) {
	if s.reader == nil {
		return 0, chem.NewError(chem.ErrFile, "stream is not open for reading")
	}
	return s.reader.Read(p)
}

func (s *composedStream) Write(p []byte) (int, error) {
	if s.writer == nil {
		return 0, chem.NewError(chem.ErrFile, "stream is not open for writing")
	}
	return s.writer.Write(p)
}

func (s *composedStream) Seek(offset int64, whence int) (int64, error) {
	if s.seeker == nil {
		return 0, chem.NewError(chem.ErrFile, "stream does not support seek")
	}
	return s.seeker.Seek(offset, whence)
}

func (s *composedStream) Close() error {
	var firstErr error
	if s.writer != nil {
		if err := s.writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.transport != nil {
		if err := s.transport.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StrippedPath returns path with any recognized compression suffix
// removed, so format dispatch sees the real format extension.
func StrippedPath(path string) string {
	_, stripped := DetectCompression(path)
	return stripped
}

func openTransportFile(path string, mode Mode) (*os.File, error) {
	var flags int
	switch mode {
	case Read:
		flags = os.O_RDONLY
	case Write:
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case Append:
		flags = os.O_RDWR | os.O_CREATE | os.O_APPEND
	default:
		return nil, chem.NewError(chem.ErrFile, "invalid mode %v", mode)
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, chem.WrapError(chem.ErrFile, err, "failed to open %q", path)
	}
	return f, nil
}

func compose(transport io.ReadWriteCloser, c Compression, mode Mode) (*composedStream, bool, error) {
	s := &composedStream{transport: transport}
	seekable := c.SupportsSeek()
	if seekable {
		if seeker, ok := transport.(io.Seeker); ok {
			s.seeker = seeker
		} else {
			seekable = false
		}
	}
	switch mode {
	case Read:
		if seekable {
			// unbuffered, so a Seek on the transport also moves the next Read
			s.reader = transport
			break
		}
		r, err := decompressReader(c, transport)
		if err != nil {
			return nil, false, err
		}
		s.reader = r
	case Write, Append:
		w, err := newCompressedWriter(c, transport)
		if err != nil {
			return nil, false, err
		}
		s.writer = w
	}
	return s, seekable, nil
}

// OpenText opens path as a line-oriented text stream, composing disk
// transport with whatever compression its outer extension names.
func OpenText(path string, mode Mode) (TextFile, error) {
	return OpenTextCompressed(path, mode, Auto)
}

// OpenTextCompressed is OpenText with an explicit codec override: pass
// Auto to derive compression from path's suffix exactly as OpenText
// does, or a specific codec to use regardless of path's own extension
// (spec.md §4.2's explicit "NAME/COMPRESSION" format string).
func OpenTextCompressed(path string, mode Mode, override Compression) (TextFile, error) {
	compression := override
	if compression == Auto {
		compression, _ = DetectCompression(path)
	}
	f, err := openTransportFile(path, mode)
	if err != nil {
		return nil, err
	}
	stream, seekable, err := compose(f, compression, mode)
	if err != nil {
		f.Close()
		return nil, err
	}
	return newTextFile(stream, mode, seekable), nil
}

// OpenBinary opens path as a byte-oriented binary stream.
func OpenBinary(path string, mode Mode) (BinaryFile, error) {
	return OpenBinaryCompressed(path, mode, Auto)
}

// OpenBinaryCompressed is OpenBinary with an explicit codec override;
// see OpenTextCompressed.
func OpenBinaryCompressed(path string, mode Mode, override Compression) (BinaryFile, error) {
	compression := override
	if compression == Auto {
		compression, _ = DetectCompression(path)
	}
	f, err := openTransportFile(path, mode)
	if err != nil {
		return nil, err
	}
	stream, seekable, err := compose(f, compression, mode)
	if err != nil {
		f.Close()
		return nil, err
	}
	return newBinaryFile(stream, seekable), nil
}

// OpenTextMemory opens a MemoryBuffer as a line-oriented text stream.
// Memory transports are never compressed: compression on an in-memory
// trajectory buffer has no outer path to carry a suffix.
func OpenTextMemory(buf *MemoryBuffer, mode Mode) TextFile {
	return newTextFile(buf, mode, true)
}

// OpenBinaryMemory opens a MemoryBuffer as a byte-oriented binary stream.
func OpenBinaryMemory(buf *MemoryBuffer, mode Mode) BinaryFile {
	return newBinaryFile(buf, true)
}
