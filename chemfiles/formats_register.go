// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : formats_register.go
package chemfiles

// Every format plug-in registers itself into format.Default() from its
// own init(). Importing each package here for its side effect only is
// what makes format.Open able to find them without format/formats/*
// importing back into format (which would cycle).
import (
	_ "github.com/cx-luo/chemfiles/format/formats/cml"
	_ "github.com/cx-luo/chemfiles/format/formats/cssr"
	_ "github.com/cx-luo/chemfiles/format/formats/dcd"
	_ "github.com/cx-luo/chemfiles/format/formats/extxyz"
	_ "github.com/cx-luo/chemfiles/format/formats/gro"
	_ "github.com/cx-luo/chemfiles/format/formats/lammpsdata"
	_ "github.com/cx-luo/chemfiles/format/formats/lammpsdump"
	_ "github.com/cx-luo/chemfiles/format/formats/mmcif"
	_ "github.com/cx-luo/chemfiles/format/formats/mmtf"
	_ "github.com/cx-luo/chemfiles/format/formats/mol2"
	_ "github.com/cx-luo/chemfiles/format/formats/netcdf"
	_ "github.com/cx-luo/chemfiles/format/formats/pdb"
	_ "github.com/cx-luo/chemfiles/format/formats/sdf"
	_ "github.com/cx-luo/chemfiles/format/formats/smiles"
	_ "github.com/cx-luo/chemfiles/format/formats/tinkerxyz"
	_ "github.com/cx-luo/chemfiles/format/formats/trr"
	_ "github.com/cx-luo/chemfiles/format/formats/xtc"
	_ "github.com/cx-luo/chemfiles/format/formats/xyz"
)
