package models

// Document is an indexed file in the knowledge base.
type Document struct {
	ID              string `json:"id"`
	Filename        string `json:"filename"`
	ChunkCount      int    `json:"chunk_count"`
	FileSize        int64  `json:"file_size"`
	UploadDate      Time   `json:"upload_date"`
	TotalTextLength int    `json:"total_text_length"`
}

// UploadResult summarizes a multi-file upload. Only aggregate counts are reported.
type UploadResult struct {
	Message        string   `json:"message,omitempty"`
	FilesProcessed int      `json:"files_processed"`
	ChunksAdded    int      `json:"chunks_added"`
	FailedFiles    []string `json:"failed_files,omitempty"`
}

// DocumentStats is the running tally shown next to the upload panel.
type DocumentStats struct {
	TotalDocs   int
	TotalChunks int
}
