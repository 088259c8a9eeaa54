package inventory

import (
	"github.com/Astemirdum/library-circulation/circulation/internal/model"
)

var transitions = map[model.Availability][]model.Availability{
	model.AvailabilityAvailable: {model.AvailabilityOnLoan, model.AvailabilityOnHold, model.AvailabilityInRepair, model.AvailabilityMissing},
	model.AvailabilityOnLoan:    {model.AvailabilityAvailable, model.AvailabilityMissing},
	model.AvailabilityOnHold:    {model.AvailabilityOnLoan, model.AvailabilityAvailable, model.AvailabilityInRepair, model.AvailabilityMissing},
	model.AvailabilityInRepair:  {model.AvailabilityAvailable, model.AvailabilityMissing},
	model.AvailabilityMissing:   {model.AvailabilityAvailable},
}

func CanTransition(from, to model.Availability) bool {
	for _, v := range transitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// TargetAvailability is where a condition assessment moves an item that is not on loan.
func TargetAvailability(condition model.Condition, current model.Availability) model.Availability {
	switch {
	case condition == model.ConditionLost:
		return model.AvailabilityMissing
	case condition == model.ConditionDamaged:
		return model.AvailabilityInRepair
	case condition.Usable() && (current == model.AvailabilityInRepair || current == model.AvailabilityMissing):
		return model.AvailabilityAvailable
	}
	return current
}

// route lists the legal steps from one availability to another. A missing item found
// damaged has to pass through available on its way to repair.
func route(from, to model.Availability) []model.Availability {
	switch {
	case from == to:
		return nil
	case CanTransition(from, to):
		return []model.Availability{to}
	case from == model.AvailabilityMissing && to == model.AvailabilityInRepair:
		return []model.Availability{model.AvailabilityAvailable, model.AvailabilityInRepair}
	}
	return nil
}
