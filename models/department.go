package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Department is a municipal unit that logs in to triage issues. Code is the
// login identifier; Password only ever holds a bcrypt hash.
type Department struct {
	ID         uint      `gorm:"primaryKey" bson:"_id" json:"id"`
	Name       string    `gorm:"not null" bson:"name" json:"name"`
	Email      string    `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	Password   string    `gorm:"not null" bson:"password" json:"-"`
	Code       string    `gorm:"column:department_id;uniqueIndex;not null" bson:"department_id" json:"department_id"`
	Category   string    `gorm:"not null" bson:"category" json:"category"`
	Address    string    `gorm:"not null" bson:"address" json:"address"`
	Phone      string    `gorm:"not null" bson:"phone" json:"phone"`
	IsVerified bool      `gorm:"not null;default:false" bson:"is_verified" json:"is_verified"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// HashPassword replaces the plaintext in Password with its bcrypt hash.
func (d *Department) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(d.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	d.Password = string(hashed)
	return nil
}

func (d *Department) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(d.Password), []byte(candidate))
	return err == nil
}

// DepartmentSummary is the public view returned on login.
type DepartmentSummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	DepartmentID string `json:"department_id"`
	Category     string `json:"category"`
}

func (d *Department) Summary() DepartmentSummary {
	return DepartmentSummary{ID: d.ID, Name: d.Name, DepartmentID: d.Code, Category: d.Category}
}
