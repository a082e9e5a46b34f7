package storage

// PurgeResult contains information about clips deleted during a purge
type PurgeResult struct {
	DeletedFiles []DeletedFile
	FreedBytes   int64
}

// DeletedFile represents a file that was deleted
type DeletedFile struct {
	Name string
	Size int64
}

// Names returns the names of the deleted files in deletion order
func (r *PurgeResult) Names() []string {
	names := make([]string, 0, len(r.DeletedFiles))
	for _, f := range r.DeletedFiles {
		names = append(names, f.Name)
	}
	return names
}
