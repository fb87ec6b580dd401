package usecase

import (
	"context"
	"fmt"

	"go-reservation-store/internal/domain/entity"
	"go-reservation-store/internal/domain/repository"
	"go-reservation-store/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateRoleInput struct {
	Name string `validate:"required,max=50"`
}

type RoleUsecase interface {
	CreateRole(ctx context.Context, input *CreateRoleInput) (int, error)
	GetRole(ctx context.Context, id int) (*entity.Role, error)
	ListRoles(ctx context.Context) ([]entity.Role, error)
	EnsureDefaultRoles(ctx context.Context) ([]entity.Role, error)
}

type roleUsecase struct {
	tx        repository.Transactor
	log       *logrus.Logger
	validator *validator.CustomValidator
	roleRepo  repository.RoleRepository
}

func NewRoleUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	validator *validator.CustomValidator,
	roleRepo repository.RoleRepository,
) RoleUsecase {
	return &roleUsecase{
		tx:        tx,
		log:       log,
		validator: validator,
		roleRepo:  roleRepo,
	}
}

func (u *roleUsecase) CreateRole(ctx context.Context, input *CreateRoleInput) (int, error) {
	if err := validateInput(u.validator, input); err != nil {
		return 0, err
	}

	role := &entity.Role{Name: input.Name}
	if err := u.roleRepo.Create(ctx, u.tx.DB(ctx), role); err != nil {
		u.log.Warnf("Failed to create role %q: %+v", input.Name, err)
		return 0, fmt.Errorf("create role: %w", err)
	}

	u.log.Infof("Role created: id=%d, name=%s", role.ID, role.Name)
	return role.ID, nil
}

func (u *roleUsecase) GetRole(ctx context.Context, id int) (*entity.Role, error) {
	role, err := u.roleRepo.FindByID(ctx, u.tx.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find role %d: %+v", id, err)
		return nil, err
	}
	if role == nil {
		return nil, &NotFoundError{Entity: "role", ID: id}
	}
	return role, nil
}

func (u *roleUsecase) ListRoles(ctx context.Context) ([]entity.Role, error) {
	roles, err := u.roleRepo.FindAll(ctx, u.tx.DB(ctx))
	if err != nil {
		u.log.Warnf("Failed to list roles: %+v", err)
		return nil, err
	}
	return roles, nil
}

// EnsureDefaultRoles creates any missing default role and returns all of them.
// The role table has no unique name constraint, so concurrent seeders are
// serialized by a table lock held until commit.
func (u *roleUsecase) EnsureDefaultRoles(ctx context.Context) ([]entity.Role, error) {
	roles := make([]entity.Role, 0, len(entity.DefaultRoles))

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.roleRepo.LockForSeeding(ctx, tx); err != nil {
			return err
		}
		for _, name := range entity.DefaultRoles {
			role, err := u.roleRepo.FindByName(ctx, tx, name)
			if err != nil {
				return err
			}
			if role == nil {
				role = &entity.Role{Name: name}
				if err := u.roleRepo.Create(ctx, tx, role); err != nil {
					return err
				}
				u.log.Infof("Seeded role %s with id=%d", name, role.ID)
			}
			roles = append(roles, *role)
		}
		return nil
	})
	if err != nil {
		u.log.Warnf("Failed to seed default roles: %+v", err)
		return nil, fmt.Errorf("seed default roles: %w", err)
	}

	return roles, nil
}
