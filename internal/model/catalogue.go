package model

import "time"

// Departement groups filieres.
type Departement struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"uniqueIndex;size:20;not null"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Filiere is an academic track offered by a departement.
type Filiere struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Code          string    `json:"code" gorm:"uniqueIndex;size:20;not null"`
	Name          string    `json:"name" gorm:"size:255;not null"`
	Description   string    `json:"description" gorm:"type:text"`
	DepartementID uint      `json:"departement_id" gorm:"not null;index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Departement *Departement `json:"departement_details,omitempty" gorm:"foreignKey:DepartementID;constraint:OnDelete:RESTRICT"`
}

// Module is a course taught within a filiere during one semester.
type Module struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Code         string    `json:"code" gorm:"uniqueIndex;size:20;not null"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Semestre     string    `json:"semestre" gorm:"size:3;not null"`
	FiliereID    uint      `json:"filiere_id" gorm:"not null;index"`
	EnseignantID *uint     `json:"enseignant_id" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Filiere    *Filiere `json:"filiere_details,omitempty" gorm:"foreignKey:FiliereID;constraint:OnDelete:RESTRICT"`
	Enseignant *User    `json:"-" gorm:"foreignKey:EnseignantID;constraint:OnDelete:SET NULL"`
}

// ModuleWithCount is a module plus the number of enrolled students.
type ModuleWithCount struct {
	Module
	StudentCount int64 `json:"student_count"`
}
