package binlog

import (
	"os"
	"path/filepath"

	"github.com/luzijia/zeppelin/internal/errs"
)

// DefaultPrefix is the binlog filename prefix used when none is given,
// matching original_source/include/zp_const.h's kBinlogPrefix.
const DefaultPrefix = "binlog"

// FileName builds the on-disk name for one binlog file: <prefix>.<filenum>,
// <filenum> zero-padded to a fixed width so a directory listing sorts in
// filenum order.
func FileName(prefix string, filenum uint32) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "." + padFilenum(filenum)
}

func padFilenum(filenum uint32) string {
	const width = 10
	s := itoa(filenum)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func itoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Exists reports whether the binlog file for filenum is present in dir.
func Exists(dir, prefix string, filenum uint32) bool {
	_, err := os.Stat(filepath.Join(dir, FileName(prefix, filenum)))
	return err == nil
}

// Open opens the binlog file for filenum in dir as a sequential Reader.
func Open(dir, prefix string, filenum uint32) (*Reader, error) {
	path := filepath.Join(dir, FileName(prefix, filenum))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.IOError, "binlog file %s does not exist", path)
		}
		return nil, errs.New(errs.IOError, "open binlog file %s: %v", path, err)
	}
	return NewReader(f), nil
}
