// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : open.go
package format

import (
	"path/filepath"
	"strings"

	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/iostack"
)

// Open implements the dispatch algorithm of spec.md §4.2 against r:
//  1. split formatString on '/' into name and compression
//  2. if compression is empty and path ends in a known compression
//     suffix, strip it and remember the compression
//  3. if name is empty, look up the remaining extension
//  4. compose the file stack and instantiate the format
//
// step 4 (stack composition) is the job of each Builder; Open only
// resolves which Builder to call and with which stripped path.
func Open(r *Registry, path string, mode iostack.Mode, formatString string) (Format, error) {
	name, compressionTag := splitFormatString(formatString)

	_, stripped := iostack.DetectCompression(path)

	compression := iostack.Auto
	if compressionTag != "" {
		var err error
		compression, err = iostack.ParseCompressionTag(compressionTag)
		if err != nil {
			return nil, err
		}
	}

	var builder Builder
	var ok bool
	if name != "" {
		builder, ok = r.ByName(name)
		if !ok {
			return nil, chem.NewError(chem.ErrFormat, "unknown format name %q", name)
		}
	} else {
		ext := filepath.Ext(stripped)
		builder, ok = r.ByExtension(ext)
		if !ok {
			return nil, chem.NewError(chem.ErrFormat, "cannot determine format from extension %q", ext)
		}
	}

	f, err := builder(path, mode, compression)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// splitFormatString splits "Name/compression" into its two parts,
// either of which may be empty.
func splitFormatString(formatString string) (name, compression string) {
	idx := strings.IndexByte(formatString, '/')
	if idx < 0 {
		return formatString, ""
	}
	return formatString[:idx], formatString[idx+1:]
}
