package service

import (
	"strings"
	"time"

	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/biswacs/lmscale-backend-sub000/pkg/apikey"
	"github.com/biswacs/lmscale-backend-sub000/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db        *gorm.DB
	jwtSecret string
	jwtExpire int
}

func NewUserService(db *gorm.DB, jwtSecret string, jwtExpire int) *UserService {
	return &UserService{db: db, jwtSecret: jwtSecret, jwtExpire: jwtExpire}
}

func (s *UserService) Register(name, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 8 {
		return nil, "", apperr.Validation("Password must be at least 8 characters")
	}

	var count int64
	s.db.Model(&model.User{}).Where("email = ? AND deleted_at IS NULL", email).Count(&count)
	if count > 0 {
		return nil, "", apperr.DuplicateName("Email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Internal("Failed to hash password")
	}
	key, err := apikey.New()
	if err != nil {
		return nil, "", apperr.Internal("Failed to generate API key")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		APIKey:       key,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, "", apperr.Internal("Failed to create user")
	}

	token, _, err := jwt.GenerateToken(s.jwtSecret, user.ID, s.jwtExpire)
	if err != nil {
		return nil, "", apperr.Internal("Failed to sign token")
	}
	return user, token, nil
}

func (s *UserService) Login(email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.User
	err := s.db.Where("email = ? AND is_active = ? AND deleted_at IS NULL", email, true).
		First(&user).Error
	if err != nil {
		return nil, "", apperr.Unauthenticated("Invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", apperr.Unauthenticated("Invalid email or password")
	}

	now := time.Now()
	s.db.Model(&user).Update("last_login_at", &now)

	token, _, err := jwt.GenerateToken(s.jwtSecret, user.ID, s.jwtExpire)
	if err != nil {
		return nil, "", apperr.Internal("Failed to sign token")
	}
	return &user, token, nil
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	var user model.User
	err := s.db.Where("is_active = ? AND deleted_at IS NULL", true).First(&user, id).Error
	if err != nil {
		return nil, apperr.NotFound("User not found")
	}
	return &user, nil
}
