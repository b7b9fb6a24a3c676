package service

import (
	"strings"

	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GpuService struct {
	db *gorm.DB
}

func NewGpuService(db *gorm.DB) *GpuService {
	return &GpuService{db: db}
}

func (s *GpuService) Register(hostIP, hostURL, region string, maxModels int) (*model.Gpu, error) {
	hostIP = strings.TrimSpace(hostIP)
	hostURL = strings.TrimSpace(hostURL)
	if hostIP == "" || hostURL == "" {
		return nil, apperr.Validation("Host IP and URL are required")
	}
	if maxModels < 1 {
		maxModels = 1
	}

	gpu := &model.Gpu{
		HostIP:    hostIP,
		HostURL:   hostURL,
		Region:    region,
		Status:    model.GpuOffline,
		MaxModels: maxModels,
	}
	if err := s.db.Create(gpu).Error; err != nil {
		return nil, apperr.Internal("Failed to register GPU")
	}
	return gpu, nil
}

func (s *GpuService) List() ([]model.Gpu, error) {
	var gpus []model.Gpu
	err := s.db.Where("deleted_at IS NULL").Order("id ASC").Find(&gpus).Error
	if err != nil {
		return nil, apperr.Internal("Failed to list GPUs")
	}
	return gpus, nil
}

func (s *GpuService) UpdateStatus(id uint, status string) (*model.Gpu, error) {
	if !model.ValidGpuStatus(status) {
		return nil, apperr.Validation("Unknown GPU status: " + status)
	}
	var gpu model.Gpu
	if err := s.db.Where("deleted_at IS NULL").First(&gpu, id).Error; err != nil {
		return nil, apperr.NotFound("GPU not found")
	}
	if err := s.db.Model(&gpu).Update("status", status).Error; err != nil {
		return nil, apperr.Internal("Failed to update GPU status")
	}
	return &gpu, nil
}

// ReportMetrics stores the latest host metrics blob as reported by the GPU.
func (s *GpuService) ReportMetrics(id uint, metrics datatypes.JSON) error {
	var gpu model.Gpu
	if err := s.db.Where("deleted_at IS NULL").First(&gpu, id).Error; err != nil {
		return apperr.NotFound("GPU not found")
	}
	if err := s.db.Model(&gpu).Update("metrics", metrics).Error; err != nil {
		return apperr.Internal("Failed to update GPU metrics")
	}
	return nil
}

func (s *GpuService) Delete(id uint) error {
	var gpu model.Gpu
	if err := s.db.Where("deleted_at IS NULL").First(&gpu, id).Error; err != nil {
		return apperr.NotFound("GPU not found")
	}
	if err := s.db.Delete(&gpu).Error; err != nil {
		return apperr.Internal("Failed to delete GPU")
	}
	return nil
}
