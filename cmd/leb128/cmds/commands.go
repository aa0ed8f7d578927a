package cmds

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-delve/leb128/pkg/config"
	"github.com/go-delve/leb128/pkg/dwarf/op"
	"github.com/go-delve/leb128/pkg/inttype"
	"github.com/go-delve/leb128/pkg/logflags"
	"github.com/go-delve/leb128/pkg/terminal"
	"github.com/go-delve/leb128/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string

	// kind is the integer type of encoded and decoded values.
	kind inttype.Kind
	// output is the format used to print encoded bytes.
	output inttype.Output

	// expression evaluation
	eval       bool
	ptrSize    int
	cfa        int64
	frameBase  int64
	staticBase uint64
	regValues  []string

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command

	conf *config.Config
)

const leb128CommandLongDesc = `leb128 encodes and decodes integers in the LEB128 variable length format
used by DWARF, WebAssembly and many binary protocols.

Every integer is written as a sequence of 7 bit groups, least significant
group first. The high bit of each byte is set on every group except the
last one. Signed integers are written in two's complement and the last
group carries the sign in its bit 6.

Decoding is strict: a value that does not fit the selected type, or that
uses more groups than the type allows, is reported as an overflow.

Supported types: u8, u16, u32, u64, u128, usize, i8, i16, i32, i64, i128
and isize. The default type and output format can be changed in the
configuration file (see 'leb128 help config').
`

// New returns an initialized command tree.
func New() *cobra.Command {
	// Config setup and load.
	conf = config.LoadConfig()

	log, logOutput, logDest = false, "", ""
	kind, output = inttype.U64, inttype.Hex
	eval, ptrSize, cfa, frameBase, staticBase, regValues = false, 8, 0, 0, 0, nil

	// Main leb128 root command.
	rootCommand = &cobra.Command{
		Use:               "leb128",
		Short:             "leb128 encodes and decodes LEB128 integers.",
		Long:              leb128CommandLongDesc,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", `Comma separated list of components that should produce debug output (see 'leb128 help log')`)
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor (see 'leb128 help log').")
	rootCommand.PersistentFlags().VarP(&kind, "type", "t", "Integer type of the values (u8, u16, u32, u64, u128, usize, i8, i16, i32, i64, i128, isize).")
	rootCommand.PersistentFlags().VarP(&output, "output", "o", "Format of encoded bytes: hex, bytes or binary.")

	// 'encode' subcommand.
	encodeCommand := &cobra.Command{
		Use:   "encode <value>...",
		Short: "Encodes integers.",
		Long: `Encodes every value as an integer of the selected type.

Values use the syntax of Go integer literals: decimal, or hexadecimal,
octal and binary with the 0x, 0o and 0b prefixes. Negative values must
follow '--' so that they are not taken for flags:

	leb128 encode -t i32 -- -624485
`,
		Args: cobra.MinimumNArgs(1),
		RunE: encodeCmd,
	}
	rootCommand.AddCommand(encodeCommand)

	// 'decode' subcommand.
	decodeCommand := &cobra.Command{
		Use:   "decode <hex bytes>...",
		Short: "Decodes integers.",
		Long: `Decodes one integer of the selected type from every argument.

Arguments are hexadecimal bytes, optionally separated by spaces, commas or
colons and prefixed by 0x. The argument '-' reads one value per line from
standard input. Bytes left over after the last group of a value are an
error.

	leb128 decode -t i32 9bf159
`,
		Args: cobra.MinimumNArgs(1),
		RunE: decodeCmd,
	}
	rootCommand.AddCommand(decodeCommand)

	// 'expr' subcommand.
	exprCommand := &cobra.Command{
		Use:   "expr <hex bytes>",
		Short: "Prints a DWARF location expression.",
		Long: `Prints the instructions of a DWARF location expression.

With --eval the expression is also executed, using the values given with
--cfa, --frame-base, --static-base and --reg for the registers it reads,
and its result is printed.

	leb128 expr --eval --frame-base 0x1000 91 68
`,
		Args: cobra.MinimumNArgs(1),
		RunE: exprCmd,
	}
	exprCommand.Flags().BoolVarP(&eval, "eval", "", false, "Executes the expression.")
	exprCommand.Flags().IntVar(&ptrSize, "ptr-size", 8, "Size of an address in bytes.")
	exprCommand.Flags().Int64Var(&cfa, "cfa", 0, "Canonical frame address.")
	exprCommand.Flags().Int64Var(&frameBase, "frame-base", 0, "Frame base address.")
	exprCommand.Flags().Uint64Var(&staticBase, "static-base", 0, "Address the program was loaded at.")
	exprCommand.Flags().StringArrayVar(&regValues, "reg", nil, "Register value, as number=value. Can be repeated.")
	rootCommand.AddCommand(exprCommand)

	// 'repl' subcommand.
	replCommand := &cobra.Command{
		Use:   "repl",
		Short: "Starts an interactive terminal.",
		Long: `Starts an interactive terminal to encode and decode integers.

Type 'help' in the terminal for the list of available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := terminal.New(conf, kind, output).Run()
			if err != nil {
				return err
			}
			if status != 0 {
				return fmt.Errorf("terminal exited with status %d", status)
			}
			return nil
		},
	}
	rootCommand.AddCommand(replCommand)

	// 'version' subcommand.
	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "leb128\n%s\n", version.LEB128Version)
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version.BuildInfo())
			}
		},
	}
	versionCommand.Flags().BoolP("verbose", "v", false, "print verbose version info")
	rootCommand.AddCommand(versionCommand)

	rootCommand.AddCommand(&cobra.Command{
		Use:   "log",
		Short: "Help about logging flags.",
		Long: `Logging can be enabled by specifying the --log flag and using the
--log-output flag to select which components should produce logs.

The argument of --log-output must be a comma separated list of component
names selected from this list:


	cli		Log command line handling
	codec		Log encoding and decoding failures
	dwarfop		Log DWARF expression evaluation
	terminal	Log terminal commands

Additionally --log-dest can be used to specify where the logs should be
written.
If the argument is a number it will be interpreted as a file descriptor,
otherwise as a file path.
`,
	})

	rootCommand.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Help about the configuration file.",
		Long: `The configuration file is config.yml, in the leb128 directory of the
user configuration directory ($XDG_CONFIG_HOME/leb128 on Linux). It is
created with all options commented out the first time leb128 runs.

	default-type	type used when --type is not given
	output		format used when --output is not given
	aliases		additional names for terminal commands
	max-history	number of lines kept in the terminal history
	disable-colors	disables colors in the terminal
`,
	})

	rootCommand.DisableAutoGenTag = true

	return rootCommand
}

func setup(cmd *cobra.Command, args []string) error {
	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("type") && conf.DefaultType != "" {
		k, err := inttype.ParseKind(conf.DefaultType)
		if err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		kind = k
	}
	if !flags.Changed("output") && conf.Output != "" {
		o, err := inttype.ParseOutput(conf.Output)
		if err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		output = o
	}
	logflags.CLILogger().Debugf("running %s with type %s and output %s", cmd.Name(), kind, output)
	return nil
}

func encodeCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, arg := range args {
		var buf bytes.Buffer
		if err := kind.Encode(&buf, arg); err != nil {
			return err
		}
		fmt.Fprintln(out, output.Format(buf.Bytes()))
	}
	return nil
}

func decodeCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, arg := range args {
		if arg != "-" {
			if err := decodeOne(out, arg); err != nil {
				return err
			}
			continue
		}
		scan := bufio.NewScanner(cmd.InOrStdin())
		for scan.Scan() {
			line := strings.TrimSpace(scan.Text())
			if line == "" {
				continue
			}
			if err := decodeOne(out, line); err != nil {
				return err
			}
		}
		if err := scan.Err(); err != nil {
			return fmt.Errorf("reading standard input: %w", err)
		}
	}
	return nil
}

func decodeOne(out io.Writer, text string) error {
	data, err := inttype.ParseHex(text)
	if err != nil {
		return err
	}
	in := bytes.NewReader(data)
	s, err := kind.Decode(in)
	if err != nil {
		return fmt.Errorf("decoding %s as %s: %w", text, kind, err)
	}
	if in.Len() > 0 {
		logflags.CLILogger().Debugf("%x: %d bytes consumed, %d left", data, len(data)-in.Len(), in.Len())
		return fmt.Errorf("decoding %s as %s: %d trailing bytes after value", text, kind, in.Len())
	}
	fmt.Fprintln(out, s)
	return nil
}

func exprCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	instructions, err := inttype.ParseHex(strings.Join(args, " "))
	if err != nil {
		return err
	}
	err = op.PrettyPrint(out, instructions)
	fmt.Fprintln(out)
	if err != nil || !eval {
		return err
	}

	switch ptrSize {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("invalid pointer size %d, must be 1, 2, 4 or 8", ptrSize)
	}

	regs := op.NewDwarfRegisters(staticBase, nil)
	regs.CFA = cfa
	regs.FrameBase = frameBase
	for _, rv := range regValues {
		n, v, err := parseRegister(rv)
		if err != nil {
			return err
		}
		regs.AddReg(n, op.DwarfRegisterFromUint64(v))
	}

	addr, pieces, err := op.ExecuteStackProgram(*regs, instructions, ptrSize)
	if err != nil {
		return err
	}
	if pieces == nil {
		fmt.Fprintf(out, "%#x\n", addr)
		return nil
	}
	for _, piece := range pieces {
		if piece.IsRegister {
			fmt.Fprintf(out, "%d bytes in register %d\n", piece.Size, piece.RegNum)
		} else {
			fmt.Fprintf(out, "%d bytes at %#x\n", piece.Size, piece.Addr)
		}
	}
	return nil
}

func parseRegister(s string) (uint64, uint64, error) {
	num, val, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, errors.New("register values must be written as number=value")
	}
	n, err := strconv.ParseUint(strings.TrimSpace(num), 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid register number %q: %w", num, err)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(val), 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value for register %d: %w", n, err)
	}
	return n, v, nil
}
