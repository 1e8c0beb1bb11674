package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	UID          string    `json:"uid" gorm:"size:36;uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	Password     string    `json:"-"` // bcrypt hash
	FullName     string    `json:"full_name" gorm:"size:100"`
	MobileNo     string    `json:"mobile_no" gorm:"size:20"`
	Occupation   string    `json:"occupation" gorm:"size:100"`
	Address      string    `json:"address"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender" gorm:"size:20"`
	ProfileImage string    `json:"-"` // file name inside the upload directory
	FirebaseUID  *string   `json:"-" gorm:"size:128;uniqueIndex"`
	Enabled      bool      `json:"-" gorm:"not null;default:true"`
	Deleted      bool      `json:"-" gorm:"not null;default:false;index"`
	Roles        []Role    `json:"-" gorm:"many2many:user_roles;"`
	CreatedDate  time.Time `json:"created_date" gorm:"column:created_date;autoCreateTime"`
	ModifiedDate time.Time `json:"modified_date" gorm:"column:modified_date;autoUpdateTime"`
}

// RoleNames flattens the loaded roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Active users can authenticate and be looked up by others.
func (u *User) Active() bool {
	return u.Enabled && !u.Deleted
}

type Role struct {
	ID   uint   `json:"-" gorm:"primaryKey"`
	Name string `json:"role" gorm:"column:role;size:20;uniqueIndex;not null"`
}

type RegisterRequest struct {
	Username   string `json:"username" validate:"omitempty,min=3,max=50,alphanum"`
	Email      string `json:"email" validate:"required,email,max=100"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	FullName   string `json:"full_name" validate:"required,min=2,max=100"`
	MobileNo   string `json:"mobile_no" validate:"omitempty,max=20"`
	Occupation string `json:"occupation" validate:"omitempty,max=100"`
	Address    string `json:"address" validate:"omitempty,max=255"`
	Age        int    `json:"age" validate:"omitempty,min=0,max=150"`
	Gender     string `json:"gender" validate:"omitempty,max=20"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest only touches the fields that are present.
type UpdateUserRequest struct {
	Username   *string `json:"username" validate:"omitempty,min=3,max=50,alphanum"`
	Email      *string `json:"email" validate:"omitempty,email,max=100"`
	FullName   *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	MobileNo   *string `json:"mobile_no" validate:"omitempty,max=20"`
	Occupation *string `json:"occupation" validate:"omitempty,max=100"`
	Address    *string `json:"address" validate:"omitempty,max=255"`
	Age        *int    `json:"age" validate:"omitempty,min=0,max=150"`
	Gender     *string `json:"gender" validate:"omitempty,max=20"`
}

type ResetPasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// UserProfile is the public projection of a user. It never carries the password.
type UserProfile struct {
	UID          string    `json:"uid"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	MobileNo     string    `json:"mobile_no"`
	Occupation   string    `json:"occupation"`
	Address      string    `json:"address"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender"`
	Roles        []string  `json:"roles"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedDate  time.Time `json:"created_date"`
	ModifiedDate time.Time `json:"modified_date"`
}

// NewUserProfile maps a user to its profile; image is the already encoded data URI.
func NewUserProfile(u *User, image string) UserProfile {
	return UserProfile{
		UID:          u.UID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		MobileNo:     u.MobileNo,
		Occupation:   u.Occupation,
		Address:      u.Address,
		Age:          u.Age,
		Gender:       u.Gender,
		Roles:        u.RoleNames(),
		ProfileImage: image,
		CreatedDate:  u.CreatedDate,
		ModifiedDate: u.ModifiedDate,
	}
}

// UserCompact is embedded in other projections.
type UserCompact struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{UID: u.UID, Username: u.Username, FullName: u.FullName}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims.
// The subject is the username.
type JwtCustomClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}
