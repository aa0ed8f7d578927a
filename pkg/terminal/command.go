// Package terminal implements functions for responding to user
// input and dispatching to the encoder and decoder.
package terminal

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cosiner/argv"
	"github.com/derekparker/trie"

	"github.com/go-delve/leb128/pkg/dwarf/op"
	"github.com/go-delve/leb128/pkg/inttype"
)

type cmdfunc func(t *Term, args []string) error

type command struct {
	aliases        []string
	builtinAliases []string
	helpMsg        string
	cmdFn          cmdfunc
}

// Commands represents the commands of the terminal.
type Commands struct {
	cmds []command
	// names maps every alias to the index of its command in cmds.
	names *trie.Trie
}

var (
	errNoCmd       = errors.New("command not available")
	errExitRequest = errors.New("exit requested")
)

func newCommands() *Commands {
	c := &Commands{}

	c.cmds = []command{
		{aliases: []string{"help", "h"}, cmdFn: c.help, helpMsg: `Prints the help message.

	help [command]

Type "help" followed by the name of a command for more information about it.`},
		{aliases: []string{"encode", "enc"}, cmdFn: encode, helpMsg: `Encodes integers.

	encode [type] <value> [value...]

Encodes every value as an integer of the given type, or of the current
type (see the 'type' command) when no type is specified. Values use the
syntax of Go integer literals. The encoding is printed in the current
output format (see the 'output' command).`},
		{aliases: []string{"decode", "dec"}, cmdFn: decode, helpMsg: `Decodes integers.

	decode [type] <hex bytes>

Decodes consecutive values of the given type, or of the current type,
from the bytes, until all bytes are consumed. Bytes are written in
hexadecimal and can be separated by spaces, commas or colons.`},
		{aliases: []string{"type", "t"}, cmdFn: setType, helpMsg: `Prints or changes the current integer type.

	type [name]

Known types are u8, u16, u32, u64, u128, usize, i8, i16, i32, i64, i128
and isize. Go type names (uint8, int64, ...) are accepted as well.`},
		{aliases: []string{"output", "o"}, cmdFn: setOutput, helpMsg: `Prints or changes the current output format.

	output [hex|bytes|binary]`},
		{aliases: []string{"expr"}, cmdFn: expr, helpMsg: `Prints a DWARF location expression.

	expr <hex bytes>`},
		{aliases: []string{"exit", "quit", "q"}, cmdFn: exitCommand, helpMsg: "Exit the terminal."},
	}

	sort.Sort(byFirstAlias(c.cmds))
	c.buildIndex()
	return c
}

type byFirstAlias []command

func (a byFirstAlias) Len() int           { return len(a) }
func (a byFirstAlias) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byFirstAlias) Less(i, j int) bool { return a[i].aliases[0] < a[j].aliases[0] }

func (c *Commands) buildIndex() {
	c.names = trie.New()
	for i := range c.cmds {
		for _, alias := range c.cmds[i].aliases {
			c.names.Add(alias, i)
		}
	}
}

// Merge takes aliases defined in the config struct and merges them with the default aliases.
func (c *Commands) Merge(allAliases map[string][]string) {
	for i := range c.cmds {
		if c.cmds[i].builtinAliases != nil {
			c.cmds[i].aliases = append(c.cmds[i].aliases[:0], c.cmds[i].builtinAliases...)
		}
	}
	for i := range c.cmds {
		if aliases, ok := allAliases[c.cmds[i].aliases[0]]; ok {
			if c.cmds[i].builtinAliases == nil {
				c.cmds[i].builtinAliases = make([]string, len(c.cmds[i].aliases))
				copy(c.cmds[i].builtinAliases, c.cmds[i].aliases)
			}
			c.cmds[i].aliases = append(c.cmds[i].aliases, aliases...)
		}
	}
	c.buildIndex()
}

// Find returns the command called cmdstr, or the only command with an
// alias starting with cmdstr.
func (c *Commands) Find(cmdstr string) (cmdfunc, error) {
	idx, err := c.index(cmdstr)
	if err != nil {
		return nil, err
	}
	return c.cmds[idx].cmdFn, nil
}

func (c *Commands) index(cmdstr string) (int, error) {
	if n, ok := c.names.Find(cmdstr); ok {
		return n.Meta().(int), nil
	}
	found := -1
	for _, alias := range c.names.PrefixSearch(cmdstr) {
		n, ok := c.names.Find(alias)
		if !ok {
			continue
		}
		idx := n.Meta().(int)
		if found >= 0 && found != idx {
			return -1, fmt.Errorf("ambiguous command %q", cmdstr)
		}
		found = idx
	}
	if found < 0 {
		return -1, errNoCmd
	}
	return found, nil
}

// Complete returns the completions of line: command names for the first
// word, type names for the second word of encode, decode and type.
func (c *Commands) Complete(line string) []string {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 0:
		return nil
	case len(fields) == 1 && !strings.HasSuffix(line, " "):
		r := c.names.PrefixSearch(strings.ToLower(fields[0]))
		sort.Strings(r)
		return r
	case len(fields) <= 2:
		idx, err := c.index(fields[0])
		if err != nil {
			return nil
		}
		switch c.cmds[idx].aliases[0] {
		case "encode", "decode", "type":
		default:
			return nil
		}
		prefix := ""
		if len(fields) == 2 {
			prefix = fields[1]
		}
		var r []string
		for _, name := range inttype.Names() {
			if strings.HasPrefix(name, prefix) {
				r = append(r, fields[0]+" "+name)
			}
		}
		return r
	}
	return nil
}

// Call takes a command to execute.
func (c *Commands) Call(cmdstr string, t *Term) error {
	args, err := splitArgs(cmdstr)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmdFn, err := c.Find(args[0])
	if err != nil {
		return err
	}
	return cmdFn(t, args[1:])
}

func splitArgs(cmdstr string) ([]string, error) {
	if strings.TrimSpace(cmdstr) == "" {
		return nil, nil
	}
	v, err := argv.Argv(cmdstr,
		func(s string) (string, error) {
			return "", fmt.Errorf("Backtick not supported in '%s'", s)
		},
		nil)
	if err != nil {
		return nil, err
	}
	if len(v) != 1 {
		return nil, fmt.Errorf("illegal commandline '%s'", cmdstr)
	}
	return v[0], nil
}

func (c *Commands) help(t *Term, args []string) error {
	if len(args) > 0 {
		for _, cmd := range c.cmds {
			for _, alias := range cmd.aliases {
				if alias == args[0] {
					fmt.Fprintln(t.stdout, cmd.helpMsg)
					return nil
				}
			}
		}
		return errNoCmd
	}

	fmt.Fprintln(t.stdout, "The following commands are available:")
	w := new(tabwriter.Writer)
	w.Init(t.stdout, 0, 8, 0, '-', 0)
	for _, cmd := range c.cmds {
		h := cmd.helpMsg
		if idx := strings.Index(h, "\n"); idx >= 0 {
			h = h[:idx]
		}
		if len(cmd.aliases) > 1 {
			fmt.Fprintf(w, "    %s (alias: %s) \t %s\n", cmd.aliases[0], strings.Join(cmd.aliases[1:], " | "), h)
		} else {
			fmt.Fprintf(w, "    %s \t %s\n", cmd.aliases[0], h)
		}
	}
	return w.Flush()
}

// kindArg returns the type named by the first argument, if it names one,
// and the remaining arguments.
func (t *Term) kindArg(args []string) (inttype.Kind, []string) {
	if len(args) > 1 {
		if k, err := inttype.ParseKind(args[0]); err == nil {
			return k, args[1:]
		}
	}
	return t.kind, args
}

func encode(t *Term, args []string) error {
	kind, values := t.kindArg(args)
	if len(values) == 0 {
		return errors.New("not enough arguments")
	}
	for _, v := range values {
		var buf bytes.Buffer
		if err := kind.Encode(&buf, v); err != nil {
			return err
		}
		fmt.Fprintf(t.stdout, "%s %s = ", kind, v)
		t.printGroups(buf.Bytes())
		fmt.Fprintln(t.stdout)
	}
	return nil
}

func decode(t *Term, args []string) error {
	kind, rest := t.kindArg(args)
	if len(rest) == 0 {
		return errors.New("not enough arguments")
	}
	data, err := inttype.ParseHex(strings.Join(rest, " "))
	if err != nil {
		return err
	}
	in := bytes.NewReader(data)
	for in.Len() > 0 {
		start := len(data) - in.Len()
		s, err := kind.Decode(in)
		if err != nil {
			return fmt.Errorf("decoding %s at offset %d: %w", kind, start, err)
		}
		t.printGroups(data[start : len(data)-in.Len()])
		fmt.Fprintf(t.stdout, " = %s %s\n", kind, s)
	}
	return nil
}

func setType(t *Term, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(t.stdout, "%s (%d bits, at most %d bytes encoded)\n", t.kind, t.kind.Width(), t.kind.MaxLen())
		return nil
	}
	k, err := inttype.ParseKind(args[0])
	if err != nil {
		return err
	}
	t.kind = k
	t.prompt = prompt(k)
	return nil
}

func setOutput(t *Term, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(t.stdout, t.output)
		return nil
	}
	o, err := inttype.ParseOutput(args[0])
	if err != nil {
		return err
	}
	t.output = o
	return nil
}

func expr(t *Term, args []string) error {
	if len(args) == 0 {
		return errors.New("not enough arguments")
	}
	data, err := inttype.ParseHex(strings.Join(args, " "))
	if err != nil {
		return err
	}
	err = op.PrettyPrint(t.stdout, data)
	fmt.Fprintln(t.stdout)
	return err
}

func exitCommand(t *Term, args []string) error {
	return errExitRequest
}
