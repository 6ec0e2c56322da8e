package models

// Status is the task lifecycle enumeration. The model default, list
// filters, bulk moves, and the recommendation scorer all consume these
// constants; raw status strings live here and nowhere else.
type Status string

const (
	StatusBacklog  Status = "backlog"
	StatusWeek     Status = "week"
	StatusToday    Status = "today"
	StatusDoing    Status = "doing"
	StatusDone     Status = "done"
	StatusWaiting  Status = "waiting"
	StatusArchived Status = "archived"
)

// ActiveStatuses returns every status except archived, the default
// visibility for task listings.
func ActiveStatuses() []Status {
	return []Status{
		StatusBacklog,
		StatusWeek,
		StatusToday,
		StatusDoing,
		StatusDone,
		StatusWaiting,
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusBacklog, StatusWeek, StatusToday, StatusDoing,
		StatusDone, StatusWaiting, StatusArchived:
		return true
	}
	return false
}

// Size buckets rough task effort.
type Size string

const (
	SizeXS Size = "xs"
	SizeS  Size = "s"
	SizeM  Size = "m"
	SizeL  Size = "l"
	SizeXL Size = "xl"
)

func (s Size) Valid() bool {
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL:
		return true
	}
	return false
}

// Energy is the energy level a task demands.
type Energy string

const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

func (e Energy) Valid() bool {
	switch e {
	case EnergyLow, EnergyMedium, EnergyHigh:
		return true
	}
	return false
}
