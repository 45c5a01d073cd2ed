package models

type Occupant struct {
	ID             ID     `json:"id"`
	TenantUsername string `json:"tenantUsername"`
	Name           string `json:"name"`
	AadharFileName string `json:"aadharFileName"`
	AadharURL      string `json:"aadharUrl"`
	UploadedAt     string `json:"uploadedAt"`
	Verified       bool   `json:"verified"`
}

// OccupantUpload is the multipart form sent when a tenant registers an occupant.
type OccupantUpload struct {
	Name        string
	FileName    string
	ContentType string
	Data        []byte
}
