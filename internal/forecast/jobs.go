package forecast

import "time"

// JobType identifies one of the household job profiles the wizard offers.
// A profile carries default income thresholds and a display-only date for
// when that job is expected to wind down.
type JobType string

const (
	JobWhiteEntry    JobType = "white-entry"
	JobWhiteSenior   JobType = "white-senior"
	JobBlueRideshare JobType = "blue-rideshare"
	JobBlueTrucker   JobType = "blue-trucker"
	JobBlueSkilled   JobType = "blue-skilled"
	JobBlueSenior    JobType = "blue-senior"
)

// JobThresholds holds the monthly net-income levels a profile needs to
// survive and to thrive, plus the job's expected end date. EndDate is
// display-only and never affects a projection.
type JobThresholds struct {
	Survival float64   `json:"survival"`
	Thriving float64   `json:"thriving"`
	EndDate  time.Time `json:"end_date"`
}

var jobThresholds = map[JobType]JobThresholds{
	JobWhiteEntry:    {Survival: 6000, Thriving: 9000, EndDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)},
	JobWhiteSenior:   {Survival: 18000, Thriving: 27000, EndDate: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)},
	JobBlueRideshare: {Survival: 7500, Thriving: 11250, EndDate: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)},
	JobBlueTrucker:   {Survival: 15000, Thriving: 22500, EndDate: time.Date(2028, 12, 31, 0, 0, 0, 0, time.UTC)},
	JobBlueSkilled:   {Survival: 9000, Thriving: 13500, EndDate: time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC)},
	JobBlueSenior:    {Survival: 20000, Thriving: 30000, EndDate: time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC)},
}

// Thresholds returns the profile's thresholds. Unknown or empty job types
// return the zero value, which disables the survive/thrive annotations.
func (j JobType) Thresholds() JobThresholds {
	return jobThresholds[j]
}

// Known reports whether j names a defined job profile.
func (j JobType) Known() bool {
	_, ok := jobThresholds[j]
	return ok
}
