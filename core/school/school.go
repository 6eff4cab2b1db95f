// Package school holds the schools served by the platform.
package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/GausMx/Scoolynk-app-sub000/core"
)

var (
	// errors
	ErrNotFound = errors.New("school not found")

	NowFunc = time.Now // mockable
)

type School struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	Name      string    `json:"name" bson:"name" db:"name"`
	Address   string    `json:"address" bson:"address" db:"address"`
	Email     string    `json:"email" bson:"email" db:"email"`
	Phone     string    `json:"phone" bson:"phone" db:"phone"`
	Motto     string    `json:"motto" bson:"motto" db:"motto"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt" db:"updated_at"` // UTC
}

// NewSchool contains information needed to create a new School.
type NewSchool struct {
	Name    string `json:"name" validate:"notblank"`
	Address string `json:"address"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Motto   string `json:"motto"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Address = core.CleanString(ns.Address)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Motto = core.CleanString(ns.Motto)
	return validate.Struct(ns)
}

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School) (School, error)
		GetSchool(ctx context.Context, id string) (School, error)
		QuerySchools(ctx context.Context) ([]School, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, ns NewSchool) (School, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return School{}, err
	}
	now := NowFunc().UTC()
	sch := School{
		ID:        uuid.NewString(),
		Name:      ns.Name,
		Address:   ns.Address,
		Email:     ns.Email,
		Phone:     ns.Phone,
		Motto:     ns.Motto,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *Service) Get(ctx context.Context, id string) (School, error) {
	if id == "" {
		return School{}, ErrNotFound
	}
	return svc.repo.GetSchool(ctx, id)
}

func (svc *Service) Query(ctx context.Context) ([]School, error) {
	return svc.repo.QuerySchools(ctx)
}
