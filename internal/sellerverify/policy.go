package sellerverify

import "trustgate/internal/models"

// Policy holds the extraction pattern, institution markers and signal
// weights used to score an ID document pair.
type Policy struct {
	StudentIDPattern string
	InstitutionName  string
	InstitutionType  string

	UniversityTextWeight int
	StudentIDWeight      int
	QRMatchWeight        int
	UniqueIDWeight       int

	VerifiedFrom int
	BasicFrom    int
}

func DefaultPolicy() Policy {
	return Policy{
		StudentIDPattern: `(ETS|ET|ENG)\d{3,5}/\d{2}`,
		InstitutionName:  "ADDIS ABABA",
		InstitutionType:  "SCIENCE AND TECHNOLOGY",

		UniversityTextWeight: 1,
		StudentIDWeight:      2,
		QRMatchWeight:        3,
		UniqueIDWeight:       2,

		VerifiedFrom: 8,
		BasicFrom:    6,
	}
}

// Signals are the boolean facts extracted from a document pair.
type Signals struct {
	HasUniversityText bool
	StudentIDFound    bool
	QRMatches         bool
	Duplicate         bool
}

func (p Policy) Score(s Signals) int {
	score := 0
	if s.HasUniversityText {
		score += p.UniversityTextWeight
	}
	if s.StudentIDFound {
		score += p.StudentIDWeight
	}
	if s.QRMatches {
		score += p.QRMatchWeight
	}
	if !s.Duplicate {
		score += p.UniqueIDWeight
	}
	return score
}

// LevelFor maps a score to a level. FLAGGED is what a below-threshold score
// maps to, but Verify never returns it: such attempts fail instead.
func (p Policy) LevelFor(score int) models.VerificationLevel {
	switch {
	case score >= p.VerifiedFrom:
		return models.LevelVerified
	case score >= p.BasicFrom:
		return models.LevelBasic
	default:
		return models.LevelFlagged
	}
}
