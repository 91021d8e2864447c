package credential

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleClient Role = "CLIENT"
	RoleVendor Role = "VENDOR"
	RoleAdmin  Role = "ADMIN"
)

type Provider string

const (
	ProviderEmail    Provider = "EMAIL"
	ProviderGoogle   Provider = "GOOGLE"
	ProviderFacebook Provider = "FACEBOOK"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusDeleted   Status = "DELETED"
	StatusPending   Status = "PENDING"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// User is the stored credential document.
type User struct {
	ID                  bson.ObjectID `bson:"_id,omitempty"`
	Name                string        `bson:"name"`
	Email               string        `bson:"email"`
	Phone               string        `bson:"phone,omitempty"`
	Gender              Gender        `bson:"gender,omitempty"`
	Avatar              string        `bson:"avatar,omitempty"`
	Providers           []Provider    `bson:"provider"`
	Roles               []Role        `bson:"roles"`
	PasswordHash        string        `bson:"password,omitempty"`
	RefreshTokens       []string      `bson:"refreshToken"`
	IsVerified          bool          `bson:"isVerified"`
	EmailVerifiedAt     *time.Time    `bson:"emailVerifiedAt"`
	PhoneVerifiedAt     *time.Time    `bson:"phoneVerifiedAt"`
	PasswordChangedAt   *time.Time    `bson:"passwordChangedAt"`
	FailedLoginAttempts int           `bson:"failedLoginAttempts"`
	LockoutUntil        *time.Time    `bson:"lockoutUntil"`
	Status              Status        `bson:"status"`
	DeletedAt           *time.Time    `bson:"deletedAt"`
	LastLoginAt         *time.Time    `bson:"lastLoginAt"`
	CreatedAt           time.Time     `bson:"createdAt"`
	UpdatedAt           time.Time     `bson:"updatedAt"`
}

func (u *User) IDHex() string { return u.ID.Hex() }

func (u *User) HasProvider(p Provider) bool { return slices.Contains(u.Providers, p) }

// PrimaryRole is the role carried in tokens.
func (u *User) PrimaryRole() Role {
	if len(u.Roles) == 0 {
		return RoleClient
	}
	return u.Roles[0]
}

// LockedAt reports whether a lockout is active at now.
func (u *User) LockedAt(now time.Time) bool {
	return u.LockoutUntil != nil && u.LockoutUntil.After(now)
}

// PublicUser is the projection returned to clients. It never carries the
// password hash or session tokens.
type PublicUser struct {
	ID              string     `json:"_id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	Gender          Gender     `json:"gender,omitempty"`
	Avatar          string     `json:"avatar,omitempty"`
	Providers       []Provider `json:"provider"`
	Roles           []Role     `json:"roles"`
	IsVerified      bool       `json:"isVerified"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt"`
	PhoneVerifiedAt *time.Time `json:"phoneVerifiedAt"`
	Status          Status     `json:"status"`
	LastLoginAt     *time.Time `json:"lastLoginAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.IDHex(),
		Name:            u.Name,
		Email:           u.Email,
		Phone:           u.Phone,
		Gender:          u.Gender,
		Avatar:          u.Avatar,
		Providers:       slices.Clone(u.Providers),
		Roles:           slices.Clone(u.Roles),
		IsVerified:      u.IsVerified,
		EmailVerifiedAt: u.EmailVerifiedAt,
		PhoneVerifiedAt: u.PhoneVerifiedAt,
		Status:          u.Status,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// ProfileUpdate carries optional profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name   *string
	Phone  *string
	Avatar *string
}

func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Avatar == nil
}
