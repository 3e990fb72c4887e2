package models

// SchedulerActor is recorded as the actor of audit entries written by
// scheduled jobs rather than by a user request.
const SchedulerActor = "scheduler"

// AuditLog records user operations and automatic materializations.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	Actor        string `gorm:"not null;default:'user'" json:"actor"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"type:uuid" json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
