package models

import "time"

// These structs define the JSON payloads exchanged with the HTTP API,
// the Cloud Workflow and the deck intake function.

// RenderResponse is returned by a successful slide-to-video run.
type RenderResponse struct {
	DownloadURL   string    `json:"downloadUrl"`
	FileName      string    `json:"fileName"`
	FileSizeBytes int64     `json:"fileSizeBytes"`
	Timestamp     time.Time `json:"timestamp"`
}

// RenderObjectRequest asks the API to render a deck that already sits in GCS.
// It is sent by the workflow started from the intake function.
type RenderObjectRequest struct {
	RunID      string `json:"runId"`
	Bucket     string `json:"bucket"`
	Object     string `json:"object"`
	SourceName string `json:"sourceName"`
}

// PromptRequest is the input for the prompt endpoints.
type PromptRequest struct {
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
}

// PromptResponse is the output of the text prompt endpoint.
type PromptResponse struct {
	Response string `json:"response"`
}

// UploadResponse mirrors the response of the original upload endpoint.
type UploadResponse struct {
	Success   bool   `json:"success"`
	PublicURL string `json:"public_url"`
}

// VideoEntry describes one published video.
type VideoEntry struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	Reference string    `json:"reference"`
}

// VideoListResponse is the output of GET /api/videos.
type VideoListResponse struct {
	Videos []VideoEntry `json:"videos"`
}

// DeleteVideoResponse is the output of DELETE /api/videos/{name}.
type DeleteVideoResponse struct {
	Deleted bool `json:"deleted"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
