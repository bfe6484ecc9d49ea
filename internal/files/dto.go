package files

import "time"

// FileResponse is the outward-facing representation of a file record.
type FileResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	UploadStatus string    `json:"uploadStatus"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toResponse(file File) FileResponse {
	return FileResponse{
		ID:           file.ID,
		Name:         file.Name,
		Key:          file.Key,
		URL:          file.URL,
		UploadStatus: string(file.UploadStatus),
		CreatedAt:    file.CreatedAt,
	}
}
