package records

// Common value set constants used across the application.

// Gender values accepted for a patient.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// EntryType discriminates the entry union on the wire.
const (
	EntryTypeHospital               EntryType = "Hospital"
	EntryTypeHealthCheck            EntryType = "HealthCheck"
	EntryTypeOccupationalHealthcare EntryType = "OccupationalHealthcare"
)

// HealthCheckRating ordinals.
const (
	RatingHealthy      HealthCheckRating = 0
	RatingLowRisk      HealthCheckRating = 1
	RatingHighRisk     HealthCheckRating = 2
	RatingCriticalRisk HealthCheckRating = 3
)

// DateLayout is the calendar date format used for entry and patient dates.
const DateLayout = "2006-01-02"

type Gender string

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type EntryType string

func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeHospital, EntryTypeHealthCheck, EntryTypeOccupationalHealthcare:
		return true
	}
	return false
}

type HealthCheckRating int

func (r HealthCheckRating) Valid() bool {
	return r >= RatingHealthy && r <= RatingCriticalRisk
}
