// Package session owns the process-wide current-user view and keeps it
// synchronized with the backend's session lifecycle: a provisional value is
// published immediately from cache, then reconciled with the authoritative
// role resolution in the background.
package session

// User is the current-user view exposed to the application.
//
// It is replaced wholesale on every resolution, never partially mutated
// except to overlay freshly resolved roles and organization onto an existing
// snapshot. Once published, Roles is never empty.
type User struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	Roles          []string `json:"roles"`
	OrganizationID string   `json:"organization_id,omitempty"`
}
