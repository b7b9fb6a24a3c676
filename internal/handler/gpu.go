package handler

import (
	"github.com/biswacs/lmscale-backend-sub000/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type GpuHandler struct {
	gpuService *service.GpuService
}

func NewGpuHandler(gpuService *service.GpuService) *GpuHandler {
	return &GpuHandler{gpuService: gpuService}
}

// POST /gpu/register
func (h *GpuHandler) Register(c *gin.Context) {
	var body struct {
		HostIP    string `json:"host_ip" binding:"required"`
		HostURL   string `json:"host_url" binding:"required"`
		Region    string `json:"region"`
		MaxModels int    `json:"max_models"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "host_ip and host_url are required")
		return
	}
	gpu, err := h.gpuService.Register(body.HostIP, body.HostURL, body.Region, body.MaxModels)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, gpu)
}

// GET /gpu/list
func (h *GpuHandler) List(c *gin.Context) {
	gpus, err := h.gpuService.List()
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gpus)
}

// POST /gpu/status
func (h *GpuHandler) UpdateStatus(c *gin.Context) {
	var body struct {
		ID     uint   `json:"id" binding:"required"`
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "id and status are required")
		return
	}
	gpu, err := h.gpuService.UpdateStatus(body.ID, body.Status)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gpu)
}

// POST /gpu/metrics
func (h *GpuHandler) ReportMetrics(c *gin.Context) {
	var body struct {
		ID      uint           `json:"id" binding:"required"`
		Metrics datatypes.JSON `json:"metrics" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "id and metrics are required")
		return
	}
	if err := h.gpuService.ReportMetrics(body.ID, body.Metrics); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "Metrics recorded", nil)
}

// POST /gpu/delete
func (h *GpuHandler) Delete(c *gin.Context) {
	var body struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "id is required")
		return
	}
	if err := h.gpuService.Delete(body.ID); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "GPU deleted", nil)
}
