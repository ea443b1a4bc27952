package domain

import "time"

// Document is file metadata attached to an owner and optionally to a client or task.
type Document struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ClientID    *string   `json:"client_id,omitempty"`
	TaskID      *string   `json:"task_id,omitempty"`
	FileName    string    `json:"file_name" validate:"notblank,max=255"`
	FileURL     string    `json:"file_url" validate:"required,url"`
	FileSize    *int64    `json:"file_size,omitempty" validate:"omitnil,gte=0"`
	FileType    string    `json:"file_type,omitempty"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`

	// StorageKey is the object key when the file lives in our bucket.
	StorageKey string `json:"-"`
}

// Columns returns the writable columns of the row.
func (d *Document) Columns() map[string]interface{} {
	cols := map[string]interface{}{
		"user_id":     d.UserID,
		"file_name":   d.FileName,
		"file_url":    d.FileURL,
		"file_type":   nullString(d.FileType),
		"description": nullString(d.Description),
		"uploaded_by": d.UploadedBy,
		"client_id":   nil,
		"task_id":     nil,
		"file_size":   nil,
	}
	if d.ClientID != nil {
		cols["client_id"] = *d.ClientID
	}
	if d.TaskID != nil {
		cols["task_id"] = *d.TaskID
	}
	if d.FileSize != nil {
		cols["file_size"] = *d.FileSize
	}
	return cols
}

func (d Document) SearchFields() []string {
	return []string{d.FileName, d.Description, d.FileType}
}

// StatusValue is empty: documents carry no workflow status.
func (d Document) StatusValue() string {
	return ""
}
