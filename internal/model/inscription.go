package model

import (
	"regexp"
	"strconv"
	"time"
)

// InscriptionStatus tracks an enrollment request through review.
type InscriptionStatus string

const (
	InscriptionPending   InscriptionStatus = "PENDING"
	InscriptionValidated InscriptionStatus = "VALIDATED"
	InscriptionRejected  InscriptionStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s InscriptionStatus) Valid() bool {
	switch s {
	case InscriptionPending, InscriptionValidated, InscriptionRejected:
		return true
	default:
		return false
	}
}

// Inscription is a student's enrollment in a filiere for one academic year.
type Inscription struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	StudentID       uint              `json:"student_id" gorm:"not null;uniqueIndex:idx_inscription_unique"`
	FiliereID       uint              `json:"filiere_id" gorm:"not null;uniqueIndex:idx_inscription_unique;index"`
	AcademicYear    string            `json:"academic_year" gorm:"size:9;not null;uniqueIndex:idx_inscription_unique"`
	Status          InscriptionStatus `json:"status" gorm:"size:10;not null;default:PENDING;index"`
	RejectionReason string            `json:"rejection_reason,omitempty" gorm:"type:text"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	Student *User    `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	Filiere *Filiere `json:"filiere_details,omitempty" gorm:"foreignKey:FiliereID;constraint:OnDelete:CASCADE"`
}

var academicYearPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// ValidAcademicYear accepts "YYYY-YYYY" where the second year follows the first.
func ValidAcademicYear(year string) bool {
	m := academicYearPattern.FindStringSubmatch(year)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}
