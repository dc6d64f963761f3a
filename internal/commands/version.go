package commands

// VersionCommand handles the /version command
type VersionCommand struct {
	version string
}

func (c *VersionCommand) Name() string  { return "/version" }
func (c *VersionCommand) Usage() string { return "/version" }

func (c *VersionCommand) Execute(env Env, args []string) string {
	return "taxchat " + c.version
}
