package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record the engine reads for investor display names and
// agent assignment. Credential and profile management live outside this
// service.
type User struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Email     string     `gorm:"column:email;not null;uniqueIndex"`
	Role      string     `gorm:"column:role;type:text;not null;default:'investor'"`
	AgentID   *uuid.UUID `gorm:"column:agent_id;type:uuid"`
	Agent     *User      `gorm:"foreignKey:AgentID"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
