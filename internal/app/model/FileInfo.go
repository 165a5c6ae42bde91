package model

import "time"

// FileInfo describes a local transcript file found by a directory scan
type FileInfo struct {
	FullPath string
	ModTime  time.Time
	Name     string
	Ext      string
}
