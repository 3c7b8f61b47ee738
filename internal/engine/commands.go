package engine

import "github.com/hammamikhairi/voicenotify/internal/domain"

// command is anything the actor loop handles. Every mutation of the dedup
// table, speech queue and repeat schedule arrives as one of these.
type command interface{ isCommand() }

type (
	// notify carries a freshly built record from intake.
	notify struct{ info *domain.NotificationInfo }

	// timerFired is sent when a record's delivery delay has elapsed.
	timerFired struct{ info *domain.NotificationInfo }

	// repeatTick is sent by the repeat ticker of the given generation.
	repeatTick struct{ generation uint64 }

	ttsCompleted   struct{ id string }
	ttsInterrupted struct{ id string }
	ttsError       struct {
		id  string
		err error
	}

	deviceStateChanged struct{ signal domain.DeviceSignal }

	// suspendToggled flips the flag when value is nil, else sets it.
	suspendToggled struct{ value *bool }

	motionInterrupt struct{}

	statusQuery struct{ reply chan domain.Status }
)

func (notify) isCommand()             {}
func (timerFired) isCommand()         {}
func (repeatTick) isCommand()         {}
func (ttsCompleted) isCommand()       {}
func (ttsInterrupted) isCommand()     {}
func (ttsError) isCommand()           {}
func (deviceStateChanged) isCommand() {}
func (suspendToggled) isCommand()     {}
func (motionInterrupt) isCommand()    {}
func (statusQuery) isCommand()        {}
