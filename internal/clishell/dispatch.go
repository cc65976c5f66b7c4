package clishell

import (
	"fmt"

	"github.com/routerd/routerd/internal/cliparse"
	"github.com/routerd/routerd/internal/clitree"
	"github.com/routerd/routerd/internal/logger"
	"github.com/routerd/routerd/internal/remoteclient"
)

// dispatch runs every action attached to result.Executable, in declaration
// order. A node may carry more than one action (e.g. a mode change plus a
// remote call on the same DEFUN).
func (s *Shell) dispatch(result *cliparse.Result) {
	node := result.Executable
	if node == nil || len(node.Actions) == 0 {
		return
	}
	for _, action := range node.Actions {
		s.dispatchOne(action, result)
	}
}

func (s *Shell) dispatchOne(action clitree.Action, result *cliparse.Result) {
	switch action.Kind {
	case "mode":
		s.pushMode(action.ModeName)
	case "built-in":
		s.execBuiltIn(action.BuiltIn)
	case "remote":
		s.execRemote(action.Remote, result)
	case "shell":
		// Reserved; not required by the core.
	default:
		logger.Warn("action with unknown kind ignored", "kind", action.Kind)
	}
}

// execBuiltIn runs one of {help, exit, enable, disable, show_privilege, end}.
// An unrecognized name is reported to the operator, not fatal.
func (s *Shell) execBuiltIn(name string) {
	switch name {
	case "help":
		printModeHelp(s.currentTree(), s.privilege)
	case "exit":
		s.popMode()
	case "end":
		s.resetMode()
	case "enable":
		s.privilege = Privileged
	case "disable":
		s.privilege = Unprivileged
	case "show_privilege":
		fmt.Printf("Current privilege level is %d\n", s.privilege)
	default:
		fmt.Printf("%% built-in %q not found\n", name)
	}
}

// execRemote materializes a RemoteAction by substituting captured parameters
// into its path and body, then writes it to the named remote's UDS stream.
func (s *Shell) execRemote(ra *clitree.RemoteAction, result *cliparse.Result) {
	if ra == nil {
		return
	}
	client, ok := s.remotes[ra.Name]
	if !ok {
		fmt.Printf("%% remote %q not defined\n", ra.Name)
		return
	}

	path := remoteclient.SubstitutePath(ra.Path, result.Params)
	path = client.Prefix + path
	body := remoteclient.SubstituteBody(ra.Body, result.Params)

	resp, err := client.Call(ra.Method, path, body)
	if err != nil {
		logger.Warn("remote call failed", logger.Err(err), "remote", ra.Name)
		fmt.Println("% Remote send error")
		return
	}
	fmt.Println(resp)
}
