package types

import "encoding/json"

// TaskStatus is the backend-reported processing status of a task or batch.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Terminal reports whether no further progress will be reported for the status.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Stage labels emitted by the backend while a single file is processed.
const (
	StageUpload     = "upload"
	StageConversion = "conversion"
	StageExtraction = "extraction"
	StageParsing    = "parsing"
	StageCompletion = "completion"
)

// UploadResponse is returned by POST /resume/upload.
type UploadResponse struct {
	TaskID string     `json:"task_id"`
	Status TaskStatus `json:"status,omitempty"`
}

// BatchUploadResponse is returned by POST /resume/upload-multiple.
type BatchUploadResponse struct {
	BatchID string   `json:"batch_id"`
	TaskIDs []string `json:"task_ids"`
}

// ProgressResponse is returned by GET /resume/progress/{task_id}.
type ProgressResponse struct {
	Stage    string          `json:"stage"`
	Progress int             `json:"progress"`
	Status   TaskStatus      `json:"status"`
	Data     json.RawMessage `json:"data,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// BatchProgressResponse is returned by GET /resume/batch-progress/{batch_id}.
type BatchProgressResponse struct {
	OverallProgress int             `json:"overall_progress"`
	Status          TaskStatus      `json:"status"`
	Files           []BatchFileInfo `json:"files"`
	CompletedFiles  int             `json:"completed_files"`
	FailedFiles     int             `json:"failed_files"`
	TotalFiles      int             `json:"total_files"`
}

// BatchFileInfo is the per-file sub-status inside a batch.
type BatchFileInfo struct {
	Filename string          `json:"filename"`
	Status   TaskStatus      `json:"status"`
	TaskID   string          `json:"task_id"`
	Data     json.RawMessage `json:"data,omitempty"`
	Progress int             `json:"progress,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// HasData reports whether a payload was attached (null counts as absent).
func HasData(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
