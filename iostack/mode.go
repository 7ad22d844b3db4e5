// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : mode.go
package iostack

// Mode selects how Open treats the target file.
type Mode int

const (
	Read Mode = iota
	Write
	Append
)

func (m Mode) String() string {
	switch m {
	case Write:
		return "write"
	case Append:
		return "append"
	default:
		return "read"
	}
}
