package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordHashCost is the bcrypt work factor for stored passwords.
const PasswordHashCost = 10

type User struct {
	ID                     string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name                   string     `json:"name" gorm:"not null"`
	Email                  string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash           string     `json:"-" gorm:"not null"`
	Role                   Role       `json:"role" gorm:"type:varchar(16);not null;default:'employee'"`
	PasswordResetTokenHash *string    `json:"-" gorm:"index"`
	PasswordResetExpiresAt *time.Time `json:"-"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`

	// Password carries a new plaintext password until the next save, where
	// it is replaced by PasswordHash. Never stored.
	Password string `json:"-" gorm:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave hashes a pending plaintext password. It runs for Create and Save.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	if u.Role == "" {
		u.Role = RoleEmployee
	}
	if u.Password == "" {
		return nil
	}
	hash, err := HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Password = ""
	return nil
}

// HashPassword bcrypts plain at PasswordHashCost.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// MatchPassword reports whether plain is the user's password.
func (u *User) MatchPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// NormalizeEmail trims and lowercases an address before lookups and writes.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
