package domain

// Names of the bot's static reminder jobs.
const (
	ReminderJobMorning = "morning"
	ReminderJobLinks   = "links"
)
