package usecase

import (
	"context"

	"go-reservation-store/internal/domain/entity"
	"go-reservation-store/internal/domain/repository"
	"go-reservation-store/pkg/validator"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	RoleID      int    `validate:"required,gt=0"`
	Username    string `validate:"required,max=50"`
	Name        string `validate:"required,max=25"`
	Lastname    string `validate:"required,max=25"`
	DNI         string `validate:"required,max=15"`
	Email       string `validate:"required,email,max=250"`
	Phone       string `validate:"required,numeric,max=10"`
	Password    string `validate:"required,min=8,max=72"`
	VirtualLink string `validate:"omitempty,url,max=250"`
}

// UpdateUserInput is a patch: nil fields are left untouched. An empty
// VirtualLink clears the link.
type UpdateUserInput struct {
	RoleID      *int    `validate:"omitnil,gt=0"`
	Username    *string `validate:"omitnil,min=1,max=50"`
	Name        *string `validate:"omitnil,min=1,max=25"`
	Lastname    *string `validate:"omitnil,min=1,max=25"`
	DNI         *string `validate:"omitnil,min=1,max=15"`
	Email       *string `validate:"omitnil,email,max=250"`
	Phone       *string `validate:"omitnil,numeric,max=10"`
	Password    *string `validate:"omitnil,min=8,max=72"`
	VirtualLink *string `validate:"omitnil,max=250,url_or_empty"`
}

type UserUsecase interface {
	CreateUser(ctx context.Context, input *CreateUserInput) (int, error)
	GetUser(ctx context.Context, id int) (*entity.User, error)
	ListUsers(ctx context.Context, filter entity.UserFilter) ([]entity.User, error)
	UpdateUser(ctx context.Context, id int, input *UpdateUserInput) (*entity.User, error)
	SetUserActive(ctx context.Context, id int, active bool) error
}

type userUsecase struct {
	tx         repository.Transactor
	log        *logrus.Logger
	validator  *validator.CustomValidator
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	bcryptCost int
}

func NewUserUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	validator *validator.CustomValidator,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	bcryptCost int,
) UserUsecase {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userUsecase{
		tx:         tx,
		log:        log,
		validator:  validator,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		bcryptCost: bcryptCost,
	}
}

func (u *userUsecase) CreateUser(ctx context.Context, input *CreateUserInput) (int, error) {
	if err := validateInput(u.validator, input); err != nil {
		return 0, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), u.bcryptCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return 0, err
	}

	user := &entity.User{
		RoleID:   input.RoleID,
		Username: input.Username,
		Name:     input.Name,
		Lastname: input.Lastname,
		DNI:      input.DNI,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashedPassword),
	}
	if input.VirtualLink != "" {
		link := input.VirtualLink
		user.VirtualLink = &link
	}
	user.Activate()

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.requireRole(ctx, tx, input.RoleID); err != nil {
			return err
		}
		if err := u.userRepo.Create(ctx, tx, user); err != nil {
			return u.translateWriteError(err, user)
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			u.log.Warnf("Failed to create user: %+v", err)
		}
		return 0, err
	}

	u.log.Infof("User created: id=%d, role=%d", user.ID, user.RoleID)
	return user.ID, nil
}

func (u *userUsecase) GetUser(ctx context.Context, id int) (*entity.User, error) {
	user, err := u.userRepo.FindByID(ctx, u.tx.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find user %d: %+v", id, err)
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user", ID: id}
	}
	return user, nil
}

func (u *userUsecase) ListUsers(ctx context.Context, filter entity.UserFilter) ([]entity.User, error) {
	users, err := u.userRepo.FindAll(ctx, u.tx.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list users: %+v", err)
		return nil, err
	}
	return users, nil
}

func (u *userUsecase) UpdateUser(ctx context.Context, id int, input *UpdateUserInput) (*entity.User, error) {
	if err := validateInput(u.validator, input); err != nil {
		return nil, err
	}

	var updated *entity.User
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		user, err := u.userRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return &NotFoundError{Entity: "user", ID: id}
		}

		if input.RoleID != nil && *input.RoleID != user.RoleID {
			if err := u.requireRole(ctx, tx, *input.RoleID); err != nil {
				return err
			}
			user.RoleID = *input.RoleID
			user.Role = entity.Role{}
		}
		if err := u.applyPatch(user, input); err != nil {
			return err
		}

		if err := u.userRepo.Update(ctx, tx, user); err != nil {
			return u.translateWriteError(err, user)
		}
		updated = user
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			u.log.Warnf("Failed to update user %d: %+v", id, err)
		}
		return nil, err
	}

	u.log.Infof("User updated: id=%d", id)
	return updated, nil
}

// SetUserActive toggles the soft-delete flag.
func (u *userUsecase) SetUserActive(ctx context.Context, id int, active bool) error {
	affected, err := u.userRepo.SetActive(ctx, u.tx.DB(ctx), id, active)
	if err != nil {
		u.log.Warnf("Failed to set user %d active=%t: %+v", id, active, err)
		return err
	}
	if affected == 0 {
		return &NotFoundError{Entity: "user", ID: id}
	}

	u.log.Infof("User %d active=%t", id, active)
	return nil
}

func (u *userUsecase) applyPatch(user *entity.User, input *UpdateUserInput) error {
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Lastname != nil {
		user.Lastname = *input.Lastname
	}
	if input.DNI != nil {
		user.DNI = *input.DNI
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.VirtualLink != nil {
		if *input.VirtualLink == "" {
			user.VirtualLink = nil
		} else {
			link := *input.VirtualLink
			user.VirtualLink = &link
		}
	}
	if input.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), u.bcryptCost)
		if err != nil {
			return err
		}
		user.Password = string(hashedPassword)
	}
	return nil
}

func (u *userUsecase) requireRole(ctx context.Context, db *gorm.DB, roleID int) error {
	role, err := u.roleRepo.FindByID(ctx, db, roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return &NotFoundError{Entity: "role", ID: roleID}
	}
	return nil
}

// translateWriteError maps constraint violations on the user table. The role
// check above can still lose a race against a concurrent role delete, hence
// the foreign key case.
func (u *userUsecase) translateWriteError(err error, user *entity.User) error {
	switch {
	case isDuplicateKeyError(err, "dni"):
		return &ConflictError{Entity: "user", Field: "dni", Value: user.DNI}
	case isDuplicateKeyError(err, "email"):
		return &ConflictError{Entity: "user", Field: "email", Value: user.Email}
	case isForeignKeyError(err, "role"):
		return &NotFoundError{Entity: "role", ID: user.RoleID}
	}
	return err
}
