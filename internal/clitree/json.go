package clitree

import "encoding/json"

// TokenDef is one declared entry in a *.cli.json file's "token" map.
type TokenDef struct {
	ID    string  `json:"id"`
	Help  string  `json:"help"`
	Range *[2]int64 `json:"range,omitempty"`
	Enum  string  `json:"enum,omitempty"`
}

// CommandDef is one entry in a *.cli.json file's "command" list.
type CommandDef struct {
	Defun     string      `json:"defun"`
	Mode      []string    `json:"mode"`
	Privilege int         `json:"privilege,omitempty"`
	Actions   []ActionDef `json:"actions,omitempty"`
}

// ActionDef is the JSON shape of one action attached to a command. Exactly
// one field should be set; ParseDefun's caller resolves it to an Action.
type ActionDef struct {
	Mode     *ModeActionDef   `json:"mode,omitempty"`
	Remote   *RemoteActionDef `json:"remote,omitempty"`
	BuiltIn  *string          `json:"built-in,omitempty"`
	Shell    *string          `json:"shell,omitempty"`
}

type ModeActionDef struct {
	Name string `json:"name"`
}

type RemoteActionDef struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Body   string `json:"body,omitempty"`
}

// GroupDef is one named group's token declarations plus command list, the
// value type of a *.cli.json document.
type GroupDef struct {
	Token   map[string]TokenDef `json:"token,omitempty"`
	Command []CommandDef        `json:"command"`
}

// CliDoc is the top-level shape of a *.cli.json file: a map from group name
// to GroupDef.
type CliDoc map[string]GroupDef

// ParseCliDoc unmarshals one *.cli.json file's contents.
func ParseCliDoc(data []byte) (CliDoc, error) {
	var doc CliDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ModeDef is one entry in reze.cli_mode.json.
type ModeDef struct {
	Prompt   string             `json:"prompt,omitempty"`
	Children map[string]ModeDef `json:"children,omitempty"`
}

// ModeDoc is the top-level shape of reze.cli_mode.json.
type ModeDoc map[string]ModeDef

// ParseModeDoc unmarshals reze.cli_mode.json's contents.
func ParseModeDoc(data []byte) (ModeDoc, error) {
	var doc ModeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
