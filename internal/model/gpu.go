package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Gpu statuses. Only available hosts are eligible for relay backend selection.
const (
	GpuAvailable   = "available"
	GpuBusy        = "busy"
	GpuOffline     = "offline"
	GpuMaintenance = "maintenance"
)

// Gpu is a self-hosted inference host in the pool.
type Gpu struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	HostIP       string         `gorm:"type:varchar(64);not null" json:"host_ip"`
	HostURL      string         `gorm:"type:varchar(512);not null" json:"host_url"`
	Region       string         `gorm:"type:varchar(32)" json:"region"`
	Status       string         `gorm:"type:varchar(16);default:offline;index:idx_gpu_status" json:"status"`
	ActiveModels datatypes.JSON `gorm:"type:json" json:"active_models,omitempty"`
	MaxModels    int            `gorm:"default:1" json:"max_models"`
	Metrics      datatypes.JSON `gorm:"type:json" json:"metrics,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Gpu) TableName() string { return "gpus" }

func ValidGpuStatus(status string) bool {
	switch status {
	case GpuAvailable, GpuBusy, GpuOffline, GpuMaintenance:
		return true
	}
	return false
}
