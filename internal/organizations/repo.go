package organizations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foratask/foratask-billing/pkg/db/models"
)

// Repository handles organization and owner-identity persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUserDTO carries the fields persisted for an owner account.
type CreateUserDTO struct {
	Email     string
	FirstName string
	LastName  string
	Phone     *string
}

// CreateUser inserts the owner identity row.
func (r *Repository) CreateUser(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := &models.User{
		ID:        uuid.New(),
		Email:     dto.Email,
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Phone:     dto.Phone,
		IsActive:  true,
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindUserByEmail loads a user by their lowercased email.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateOrganizationDTO carries the fields persisted for a new tenant.
type CreateOrganizationDTO struct {
	Name          string
	Email         string
	ContactNumber *string
	Address       *string
	OwnerUserID   uuid.UUID
}

// CreateOrganization inserts the tenant row.
func (r *Repository) CreateOrganization(ctx context.Context, dto CreateOrganizationDTO) (*models.Organization, error) {
	org := &models.Organization{
		ID:            uuid.New(),
		Name:          dto.Name,
		Email:         dto.Email,
		ContactNumber: dto.ContactNumber,
		Address:       dto.Address,
		OwnerUserID:   dto.OwnerUserID,
	}
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

// FindByID loads an organization by its primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
