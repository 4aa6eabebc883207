package model

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ControleWeight and ExamenWeight are the final grade weights.
	ControleWeight = decimal.RequireFromString("0.4")
	ExamenWeight   = decimal.RequireFromString("0.6")
	// PassingGrade is the minimum final grade to validate a module.
	PassingGrade = decimal.NewFromInt(10)
	// MaxGrade bounds every grade.
	MaxGrade = decimal.NewFromInt(20)
)

// Note is a student's grade in a module for one academic year.
type Note struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	StudentID    uint            `json:"student_id" gorm:"not null;uniqueIndex:idx_note_unique"`
	ModuleID     uint            `json:"module_id" gorm:"not null;uniqueIndex:idx_note_unique;index"`
	AcademicYear string          `json:"academic_year" gorm:"size:9;not null;uniqueIndex:idx_note_unique"`
	NoteControle decimal.Decimal `json:"note_controle" gorm:"type:decimal(5,2);not null"`
	NoteExamen   decimal.Decimal `json:"note_examen" gorm:"type:decimal(5,2);not null"`
	NoteFinale   decimal.Decimal `json:"note_finale" gorm:"type:decimal(5,2);not null"`
	SaisieParID  *uint           `json:"saisie_par_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Student   *User   `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	Module    *Module `json:"module_details,omitempty" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`
	SaisiePar *User   `json:"-" gorm:"foreignKey:SaisieParID;constraint:OnDelete:SET NULL"`
}

// FinalGrade applies the 40/60 weighting and rounds to two decimals.
func FinalGrade(controle, examen decimal.Decimal) decimal.Decimal {
	return controle.Mul(ControleWeight).Add(examen.Mul(ExamenWeight)).Round(2)
}

// ValidGrade reports whether g lies within 0..20.
func ValidGrade(g decimal.Decimal) bool {
	return !g.IsNegative() && g.LessThanOrEqual(MaxGrade)
}

// Passed reports whether the final grade validates the module.
func (n *Note) Passed() bool {
	return n.NoteFinale.GreaterThanOrEqual(PassingGrade)
}
