package converttoloan

const (
	commandType = "ConvertToLoan"
)

// Command represents the intent of staff to approve a reservation when the holder picks the copy up.
type Command struct {
	HoldID string
	Actor  string
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(holdID string, actor string) Command {
	return Command{
		HoldID: holdID,
		Actor:  actor,
	}
}
