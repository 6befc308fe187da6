package models

import (
	"strings"
	"time"
)

// Protocol values for Receiver.Protocol.
// Serial is stored for documentation purposes only; the executor cannot
// dispatch to serial receivers.
const (
	ProtocolHTTP   = "http"
	ProtocolTelnet = "telnet"
	ProtocolSerial = "serial"
)

// Parameter types for CommandParameter.ParamType.
const (
	ParamString  = "string"
	ParamInteger = "integer"
	ParamFloat   = "float"
	ParamBoolean = "boolean"
	ParamEnum    = "enum"
)

// Receiver represents the receivers table: one row per supported AVR model.
type Receiver struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Manufacturer    string    `gorm:"not null;uniqueIndex:idx_receivers_manufacturer_model" json:"manufacturer" binding:"required"`
	Model           string    `gorm:"not null;uniqueIndex:idx_receivers_manufacturer_model" json:"model" binding:"required"`
	FirmwareVersion string    `json:"firmware_version"`
	Protocol        string    `gorm:"not null;default:'http'" json:"protocol" binding:"required,oneof=http telnet serial"`
	DefaultPort     int       `gorm:"default:80" json:"default_port" binding:"omitempty,min=1,max=65535"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Commands []Command `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"commands,omitempty"`
}

// Command represents the commands table: a named action a receiver supports,
// stored as a template with named placeholders. ActionName is unique per
// receiver; the executor resolves commands by the (receiver, action_name) pair.
type Command struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ReceiverID      int64     `gorm:"not null;uniqueIndex:idx_commands_receiver_action" json:"receiver_id" binding:"required"`
	Receiver        *Receiver `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	ActionType      string    `gorm:"not null" json:"action_type" binding:"required"`
	ActionName      string    `gorm:"not null;uniqueIndex:idx_commands_receiver_action" json:"action_name" binding:"required"`
	Endpoint        string    `json:"endpoint"`
	HTTPMethod      string    `gorm:"default:'GET'" json:"http_method" binding:"omitempty,oneof=GET POST PUT"`
	ContentType     string    `json:"content_type"`
	CommandTemplate string    `gorm:"not null" json:"command_template" binding:"required"`
	ExpectsResponse bool      `gorm:"default:false" json:"expects_response"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Parameters []CommandParameter `gorm:"foreignKey:CommandID;constraint:OnDelete:CASCADE" json:"parameters,omitempty"`
}

// CommandParameter represents the command_parameters table: the declared type,
// required flag, bounds and permitted values for one template placeholder.
type CommandParameter struct {
	ID           int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CommandID    int64    `gorm:"not null;index" json:"command_id" binding:"required"`
	ParamName    string   `gorm:"not null" json:"param_name" binding:"required"`
	ParamType    string   `gorm:"not null" json:"param_type" binding:"required,oneof=string integer float boolean enum"`
	Required     bool     `gorm:"default:false" json:"required"`
	DefaultValue string   `json:"default_value"`
	ValidValues  string   `json:"valid_values"` // comma-separated permitted literals for enum types
	MinValue     *float64 `json:"min_value"`
	MaxValue     *float64 `json:"max_value"`
	Description  string   `json:"description"`
}

// ValidValuesList splits the stored ValidValues column into individual literals.
func (p CommandParameter) ValidValuesList() []string {
	if p.ValidValues == "" {
		return nil
	}
	parts := strings.Split(p.ValidValues, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// DiscoveredReceiver represents the discovered_receivers table: a physical
// device sighted on the network by the discovery sweep.
type DiscoveredReceiver struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ReceiverID      *int64    `json:"receiver_id"`
	Receiver        *Receiver `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Hostname        string    `json:"hostname"`
	IPAddress       string    `gorm:"not null;index:idx_discovered_addr" json:"ip_address"`
	Port            int       `gorm:"default:80;index:idx_discovered_addr" json:"port"`
	FriendlyName    string    `json:"friendly_name"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	LastSeen        time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"last_seen"`
	DiscoveredAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"discovered_at"`
	DiscoveryMethod string    `json:"discovery_method"`
}

// ErrorLog represents the error_logs table, used to separate user mistakes
// from server-side bugs when reviewing failures.
type ErrorLog struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ErrorType     string    `gorm:"not null" json:"error_type"`
	ErrorCategory string    `gorm:"not null" json:"error_category"` // user_error, bug, unknown
	ErrorMessage  string    `gorm:"not null" json:"error_message"`
	RequestPath   string    `json:"request_path"`
	UserAgent     string    `json:"user_agent"`
	OccurredAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"occurred_at"`
}

// TableName overrides the default table name logic
func (Receiver) TableName() string           { return "receivers" }
func (Command) TableName() string            { return "commands" }
func (CommandParameter) TableName() string   { return "command_parameters" }
func (DiscoveredReceiver) TableName() string { return "discovered_receivers" }
func (ErrorLog) TableName() string           { return "error_logs" }

// GetID methods to satisfy Identifiable interface
func (r Receiver) GetID() int64           { return r.ID }
func (c Command) GetID() int64            { return c.ID }
func (p CommandParameter) GetID() int64   { return p.ID }
func (d DiscoveredReceiver) GetID() int64 { return d.ID }
func (e ErrorLog) GetID() int64           { return e.ID }
