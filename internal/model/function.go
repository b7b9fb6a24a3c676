package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// TypeTag enumerates the runtime types a declared function parameter accepts.
type TypeTag string

const (
	TypeString  TypeTag = "string"
	TypeNumber  TypeTag = "number"
	TypeBoolean TypeTag = "boolean"
	TypeArray   TypeTag = "array"
	TypeObject  TypeTag = "object"
)

func (t TypeTag) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// Matches reports whether a decoded JSON value conforms to the tag.
func (t TypeTag) Matches(v interface{}) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		_, ok := v.(float64)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeArray:
		_, ok := v.([]interface{})
		return ok
	case TypeObject:
		_, ok := v.(map[string]interface{})
		return ok
	}
	return false
}

// ParameterSchema declares where each call argument goes and what type it
// must carry. Missing sections default to empty mappings.
type ParameterSchema struct {
	Query  map[string]TypeTag `json:"query"`
	Header map[string]TypeTag `json:"header"`
}

func (p ParameterSchema) Value() (driver.Value, error) {
	if p.Query == nil {
		p.Query = map[string]TypeTag{}
	}
	if p.Header == nil {
		p.Header = map[string]TypeTag{}
	}
	b, err := json.Marshal(p)
	return string(b), err
}

func (p *ParameterSchema) Scan(value interface{}) error {
	if value == nil {
		*p = ParameterSchema{Query: map[string]TypeTag{}, Header: map[string]TypeTag{}}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	}
	if err := json.Unmarshal(bytes, p); err != nil {
		return err
	}
	if p.Query == nil {
		p.Query = map[string]TypeTag{}
	}
	if p.Header == nil {
		p.Header = map[string]TypeTag{}
	}
	return nil
}

// Function is a registered external webhook an assistant may invoke
// mid-conversation. Rows only exist after a successful live probe.
type Function struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	AssistantID uint            `gorm:"not null;index:idx_function_assistant" json:"assistant_id"`
	Name        string          `gorm:"type:varchar(128);not null" json:"name"`
	Endpoint    string          `gorm:"type:varchar(512);not null" json:"endpoint"`
	Method      string          `gorm:"type:varchar(8);not null" json:"method"`
	Parameters  ParameterSchema `gorm:"type:json" json:"parameters"`
	AuthType    string          `gorm:"type:varchar(16);default:none" json:"auth_type"`
	AuthSecret  string          `gorm:"type:varchar(512)" json:"-"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	IsVerified  bool            `gorm:"default:false" json:"is_verified"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Assistant *Assistant `gorm:"foreignKey:AssistantID" json:"-"`
}

func (Function) TableName() string { return "functions" }
