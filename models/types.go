package models

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ServiceIdentity is the acting identity for tokens issued from an API key.
const ServiceIdentity = "mobile_app"

// RecordRequiredFields lists the keys a new record must carry, in the order
// they are checked.
var RecordRequiredFields = []string{
	"worker", "project", "date", "start_time", "break_start",
	"break_end", "end_time", "hours", "description",
}

// Request types

type LoginRequest struct {
	Name string `json:"name" validate:"required"`
}

type WorkerRequest struct {
	Worker string `json:"worker" validate:"required"`
}

type ProjectRequest struct {
	Project string `json:"project" validate:"required"`
}

type RecordIDRequest struct {
	ID string `json:"id" validate:"required"`
}

// NewRecord is a record as submitted by a client. ID and Synced are
// optional; a missing ID is generated.
type NewRecord struct {
	ID          string  `json:"id,omitempty"`
	Worker      string  `json:"worker"`
	Project     string  `json:"project"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	BreakStart  string  `json:"break_start"`
	BreakEnd    string  `json:"break_end"`
	EndTime     string  `json:"end_time"`
	Hours       float64 `json:"hours"`
	Description *string `json:"description"`
	Synced      bool    `json:"synced,omitempty"`
}

// Response types

type TokenResponse struct {
	Token string `json:"token"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type WorkersResponse struct {
	Status  string   `json:"status"`
	Workers []string `json:"workers"`
}

type ProjectsResponse struct {
	Status   string   `json:"status"`
	Projects []string `json:"projects"`
}

type RecordsResponse struct {
	Records []Record `json:"records"`
}

type UploadPhotoResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

type PhotosResponse struct {
	Photos []string `json:"photos"`
}

type ProcessPhotosResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	ProcessedFiles int    `json:"processed_files"`
	Forwarded      int    `json:"forwarded"`
	Failed         int    `json:"failed"`
}

// Domain types

// Record is the external view of a time entry, with worker and project
// given by name.
type Record struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Worker      string  `json:"worker"`
	Project     string  `json:"project"`
	StartTime   string  `json:"start_time"`
	BreakStart  string  `json:"break_start"`
	BreakEnd    string  `json:"break_end"`
	EndTime     string  `json:"end_time"`
	Hours       float64 `json:"hours"`
	Description *string `json:"description"`
	Synced      bool    `json:"synced"`
}

// APIKey as listed by the CLI.
type APIKey struct {
	Key         string `json:"key"`
	Description string `json:"description,omitempty"`
}

// Realtime event payloads

type ProjectPhotosEvent struct {
	Project string   `json:"project"`
	Photos  []string `json:"photos"`
}

type RecordRemovedEvent struct {
	ID string `json:"id"`
}

type GreetingEvent struct {
	Data string `json:"data"`
}

// Error response

type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
