// internal/stages/notify/models.go
package notify

// Output records which channels fired for a run summary.
type Output struct {
	EmailSent bool `json:"emailSent"`
	AlertSent bool `json:"alertSent"`
}
