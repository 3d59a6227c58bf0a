// Package command defines runnable commands and the registry that maps
// command names to them.
//
// A registration pairs a name with a binding table for its configuration type
// and a factory that builds the command from a bound configuration. The
// registry stores registrations type-erased, so commands with unrelated
// configuration types live side by side:
//
//	reg := command.NewRegistry()
//	reg.Register(
//		command.Define("echo", echoTable, newEcho, command.WithDescription("print a message")),
//		command.Define("wait", waitTable, newWait),
//	)
//	r, err := reg.Resolve("ECHO")
package command
