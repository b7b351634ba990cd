package fileserver

// DashboardSnapshot is the file server's self-reported state. A
// successful fetch doubles as proof that the configured key is valid.
type DashboardSnapshot struct {
	UptimeSeconds int64           `json:"uptimeSeconds"`
	Requests      RequestCounters `json:"requests"`
	QueueDepth    int             `json:"queueDepth"`
	Memory        MemoryUsage     `json:"memory"`
	Disk          DiskUsage       `json:"disk"`
}

// RequestCounters aggregates the server's request accounting.
type RequestCounters struct {
	Total       int64   `json:"total"`
	Succeeded   int64   `json:"succeeded"`
	Failed      int64   `json:"failed"`
	SuccessRate float64 `json:"successRate"`
}

// MemoryUsage is a point-in-time memory snapshot.
type MemoryUsage struct {
	UsedBytes  int64 `json:"usedBytes"`
	TotalBytes int64 `json:"totalBytes"`
}

// DiskUsage is a point-in-time disk snapshot.
type DiskUsage struct {
	UsedBytes  int64 `json:"usedBytes"`
	FreeBytes  int64 `json:"freeBytes"`
	TotalBytes int64 `json:"totalBytes"`
}

// FileInfo describes one physical file on the server.
type FileInfo struct {
	Path      string `json:"path"`
	Type      string `json:"type"` // video, music
	SizeBytes int64  `json:"sizeBytes"`
	ModTime   string `json:"modTime,omitempty"`
}

// FileListing is the response of the file listing endpoint.
type FileListing struct {
	Files      []FileInfo `json:"files"`
	TotalCount int        `json:"totalCount"`
	TotalSize  int64      `json:"totalSize"`
}

// OrphanedFileSet partitions files with no matching catalog record by
// asset kind.
type OrphanedFileSet struct {
	VideoFiles []FileInfo `json:"videoFiles"`
	MusicFiles []FileInfo `json:"musicFiles"`
	TotalSize  int64      `json:"totalSize"`
}

// Count returns the number of orphaned files across both kinds.
func (s *OrphanedFileSet) Count() int {
	return len(s.VideoFiles) + len(s.MusicFiles)
}

// CleanupEntry is one file the cleanup run classified.
type CleanupEntry struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
	Reason    string `json:"reason,omitempty"`
}

// CleanupReport partitions a cleanup run. The partition is identical
// for dry runs; DryRun only controls whether deletion was performed.
type CleanupReport struct {
	DryRun     bool           `json:"dryRun"`
	Deleted    []CleanupEntry `json:"deleted"`
	Failed     []CleanupEntry `json:"failed"`
	Skipped    []CleanupEntry `json:"skipped"`
	SpaceFreed int64          `json:"spaceFreed"`
}

// TempCleanupReport reports a temp-directory cleanup.
type TempCleanupReport struct {
	RemovedCount int   `json:"removedCount"`
	SpaceFreed   int64 `json:"spaceFreed"`
}

// KillReport reports a process-kill sweep.
type KillReport struct {
	KilledCount int      `json:"killedCount"`
	Processes   []string `json:"processes"`
}

// LogLines is a tail of the server's log.
type LogLines struct {
	Lines []string `json:"lines"`
}
