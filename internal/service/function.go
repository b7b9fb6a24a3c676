package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/biswacs/lmscale-backend-sub000/internal/webhook"
	"github.com/biswacs/lmscale-backend-sub000/pkg/encrypt"
	"gorm.io/gorm"
)

// ProbeClient performs the live test call against a candidate endpoint.
type ProbeClient interface {
	Invoke(ctx context.Context, fn *model.Function, args map[string]interface{}) (int, string, error)
}

type FunctionService struct {
	db     *gorm.DB
	probe  ProbeClient
	aesKey string
}

func NewFunctionService(db *gorm.DB, probe ProbeClient, aesKey string) *FunctionService {
	return &FunctionService{db: db, probe: probe, aesKey: aesKey}
}

type FunctionInput struct {
	AssistantID uint                   `json:"assistant_id"`
	Name        string                 `json:"name"`
	Endpoint    string                 `json:"endpoint"`
	Method      string                 `json:"method"`
	AuthType    string                 `json:"auth_type"`
	AuthSecret  string                 `json:"auth_secret"`
	Parameters  model.ParameterSchema  `json:"parameters"`
	TestArgs    map[string]interface{} `json:"test_args"`
}

func (in *FunctionInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Method = strings.ToUpper(strings.TrimSpace(in.Method))
	if in.Name == "" || in.Endpoint == "" {
		return apperr.Validation("Name and endpoint are required")
	}
	if in.Method != "GET" && in.Method != "POST" {
		return apperr.Validation("Method must be GET or POST")
	}
	u, err := url.Parse(in.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.Validation("Endpoint must be a valid http(s) URL")
	}
	if in.AuthType == "" {
		in.AuthType = "none"
	}
	if in.AuthType != "none" && in.AuthType != "bearer" {
		return apperr.Validation("Auth type must be none or bearer")
	}
	for _, tag := range in.Parameters.Query {
		if !tag.Valid() {
			return apperr.Validation("Unknown parameter type: " + string(tag))
		}
	}
	for _, tag := range in.Parameters.Header {
		if !tag.Valid() {
			return apperr.Validation("Unknown parameter type: " + string(tag))
		}
	}
	if in.Parameters.Query == nil {
		in.Parameters.Query = map[string]model.TypeTag{}
	}
	if in.Parameters.Header == nil {
		in.Parameters.Header = map[string]model.TypeTag{}
	}
	return nil
}

// Create registers a function. The declared schema is validated against the
// supplied test arguments and the endpoint is probed live; nothing is
// persisted unless the probe returns 2xx.
func (s *FunctionService) Create(ctx context.Context, userID uint, in FunctionInput) (*model.Function, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := ownedAssistant(s.db, in.AssistantID, userID); err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&model.Function{}).
		Where("assistant_id = ? AND name = ? AND deleted_at IS NULL", in.AssistantID, in.Name).
		Count(&count)
	if count > 0 {
		return nil, apperr.DuplicateName("A function with this name already exists")
	}

	fn, err := s.buildVerified(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.db.Create(fn).Error; err != nil {
		return nil, apperr.Internal("Failed to create function")
	}
	return fn, nil
}

// Update re-validates and re-probes with the new definition before any row
// is touched; a failed probe leaves the stored function unchanged.
func (s *FunctionService) Update(ctx context.Context, id, userID uint, in FunctionInput) (*model.Function, error) {
	existing, err := s.ownedFunction(s.db, id, userID)
	if err != nil {
		return nil, err
	}
	in.AssistantID = existing.AssistantID
	if err := in.validate(); err != nil {
		return nil, err
	}

	if in.Name != existing.Name {
		var count int64
		s.db.Model(&model.Function{}).
			Where("assistant_id = ? AND name = ? AND id != ? AND deleted_at IS NULL", existing.AssistantID, in.Name, id).
			Count(&count)
		if count > 0 {
			return nil, apperr.DuplicateName("A function with this name already exists")
		}
	}

	candidate, err := s.buildVerified(ctx, in)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		fn, err := s.ownedFunction(tx, id, userID)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"name":        candidate.Name,
			"endpoint":    candidate.Endpoint,
			"method":      candidate.Method,
			"parameters":  candidate.Parameters,
			"auth_type":   candidate.AuthType,
			"is_verified": true,
		}
		if candidate.AuthSecret != "" {
			updates["auth_secret"] = candidate.AuthSecret
		}
		if err := tx.Model(fn).Updates(updates).Error; err != nil {
			return apperr.Internal("Failed to update function")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ownedFunction(s.db, id, userID)
}

// buildVerified runs schema validation and the live probe, returning a
// function row ready to persist.
func (s *FunctionService) buildVerified(ctx context.Context, in FunctionInput) (*model.Function, error) {
	if in.TestArgs == nil {
		in.TestArgs = map[string]interface{}{}
	}
	if err := webhook.ValidateArgs(in.Parameters, in.TestArgs); err != nil {
		return nil, err
	}

	fn := &model.Function{
		AssistantID: in.AssistantID,
		Name:        in.Name,
		Endpoint:    in.Endpoint,
		Method:      in.Method,
		Parameters:  in.Parameters,
		AuthType:    in.AuthType,
		IsActive:    true,
		IsVerified:  true,
	}
	if in.AuthSecret != "" {
		sealed, err := encrypt.Seal(s.aesKey, in.AuthSecret)
		if err != nil {
			return nil, apperr.Internal("Failed to store auth secret")
		}
		fn.AuthSecret = sealed
	}

	status, _, err := s.probe.Invoke(ctx, fn, in.TestArgs)
	if err != nil {
		return nil, apperr.EndpointTestFailed("Endpoint test call failed", err.Error())
	}
	if status < 200 || status >= 300 {
		return nil, apperr.EndpointTestFailed("Endpoint test call returned a non-2xx status")
	}
	return fn, nil
}

func (s *FunctionService) List(assistantID, userID uint) ([]model.Function, error) {
	if _, err := ownedAssistant(s.db, assistantID, userID); err != nil {
		return nil, err
	}
	var functions []model.Function
	err := s.db.Where("assistant_id = ? AND deleted_at IS NULL", assistantID).
		Order("created_at ASC").Find(&functions).Error
	if err != nil {
		return nil, apperr.Internal("Failed to list functions")
	}
	return functions, nil
}

func (s *FunctionService) GetOne(id, userID uint) (*model.Function, error) {
	return s.ownedFunction(s.db, id, userID)
}

func (s *FunctionService) Delete(id, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		fn, err := s.ownedFunction(tx, id, userID)
		if err != nil {
			return err
		}
		if err := tx.Delete(fn).Error; err != nil {
			return apperr.Internal("Failed to delete function")
		}
		return nil
	})
}

func (s *FunctionService) ownedFunction(tx *gorm.DB, id, userID uint) (*model.Function, error) {
	var fn model.Function
	err := tx.Joins("JOIN assistants ON assistants.id = functions.assistant_id").
		Where("functions.id = ? AND assistants.user_id = ? AND functions.deleted_at IS NULL AND assistants.deleted_at IS NULL", id, userID).
		First(&fn).Error
	if err != nil {
		return nil, apperr.NotFound("Function not found")
	}
	return &fn, nil
}
