package commands

// ExpireBroadcastsCommand sweeps offers whose deadline has passed. It carries no
// parameters; the handler reads the time from its clock.
type ExpireBroadcastsCommand struct{}

func NewExpireBroadcastsCommand() ExpireBroadcastsCommand {
	return ExpireBroadcastsCommand{}
}
