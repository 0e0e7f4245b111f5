// internal/models/eventlog.go
// Audit & Log Sink rows, per spec.md §3/§4.9.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// LogMeta is an arbitrary JSON-column metadata bag attached to a log row
// (e.g. audit CSV URL, elimination parameters, counts).
type LogMeta map[string]interface{}

func (m *LogMeta) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into LogMeta", value)
	}
	return json.Unmarshal(bytes, m)
}

func (m LogMeta) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// EventLog is one append-only admin-action row.
type EventLog struct {
	ID         int       `json:"id" db:"id"`
	EventSlug  string    `json:"event_slug" db:"event_slug"`
	EventID    *int      `json:"event_id,omitempty" db:"event_id"`
	AdminID    int       `json:"admin_id" db:"admin_id"`
	AdminRegno string    `json:"admin_regno" db:"admin_regno"`
	AdminName  string    `json:"admin_name" db:"admin_name"`
	Action     string    `json:"action" db:"action"`
	Method     string    `json:"method" db:"method"`
	Path       string    `json:"path" db:"path"`
	Meta       LogMeta   `json:"meta" db:"meta"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SystemConfig is a row of the system_config key/value feature-flag table
// (spec.md §6/§9).
type SystemConfig struct {
	Key         string    `json:"key" db:"key"`
	Value       string    `json:"value" db:"value"`
	RecruitURL  *string   `json:"recruit_url,omitempty" db:"recruit_url"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Well-known feature-flag keys, per spec.md §9.
const (
	ConfigKeyPdaRecruitmentOpen           = "pda_recruitment_open"
	ConfigKeyPersohubEventsParityEnabled  = "persohub_events_parity_enabled"
)
