package testing

import (
	"github.com/rstms/disc-kit/pkg/iso9660"
	"github.com/rstms/disc-kit/pkg/iso9660/directory"
)

// GetFileAndFolderCounts walks the volume from the root and counts directories and files. Pseudo-entries are
// not counted.
func GetFileAndFolderCounts(fs *iso9660.FileSystem) (int, int, error) {
	var folderCount, fileCount int
	err := fs.Walk(fs.RootDir(), func(_ string, rec *directory.Record) error {
		if rec.IsDirectory() {
			folderCount++
		} else {
			fileCount++
		}
		return nil
	})
	return folderCount, fileCount, err
}
