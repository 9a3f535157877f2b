package models

import "time"

// ScheduleSettings is the admin-configured nightly sync schedule. Singleton row.
type ScheduleSettings struct {
	ID             uint `gorm:"primaryKey"`
	Enabled        bool
	Hour           int
	Minute         int
	LookbackMonths int
	Timezone       string
	UpdatedAt      time.Time
}
