package monitor

import "time"

type FileMetrics struct {
	Source   string        `json:"source"`
	Chunks   int           `json:"chunks"`
	Duration time.Duration `json:"duration"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

type RunMetrics struct {
	RunID         string                 `json:"run_id"`
	TotalFiles    int                    `json:"total_files"`
	TotalChunks   int                    `json:"total_chunks"`
	TotalDuration time.Duration          `json:"total_duration"`
	FileMetrics   map[string]FileMetrics `json:"file_metrics"`
	StartTime     time.Time              `json:"start_time"`
	EndTime       time.Time              `json:"end_time"`
}
