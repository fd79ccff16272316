// Package sh provides the interactive console decoding captured bytes.
package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/imulink/pkg/sink"
	"github.com/robotalks/imulink/pkg/transport/serial"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell   *ishell.Shell
	Session *Session
}

const (
	shellKey = "$shell"
	prompt   = "imu > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DecodeCmd,
		&ReplayCmd,
		&StatsCmd,
		&ResetCmd,
		&PortsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print records in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:   ishell.New(),
		Session: NewSession(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// FormatEvent renders an Event as a single line.
func (s *Shell) FormatEvent(ev Event) string {
	if ev.Err != nil {
		return "rejected: " + ev.Err.Error()
	}
	line := ev.Packet.String()
	if ev.Record == nil {
		return line + " (discarded)"
	}
	if s.OutputJSON {
		out, err := json.Marshal(sink.NewEnvelope(ev.Record, time.Now()))
		if err != nil {
			return line + " " + err.Error()
		}
		return string(out)
	}
	return line + " " + ev.Record.String()
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Exit("command expected")
}

var (
	// DecodeCmd feeds hex bytes into the session.
	DecodeCmd = ishell.Cmd{
		Name:    "decode",
		Aliases: []string{"d"},
		Help:    "HEX... feed bytes, partial frames are kept",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			data, err := ParseHex(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			for _, ev := range s.Session.Feed(data) {
				c.Println(s.FormatEvent(ev))
			}
			if state, n := s.Session.State(); n > 0 {
				c.Printf("%s, %d bytes buffered\n", state, n)
			}
		},
	}

	// ReplayCmd decodes a raw capture file.
	ReplayCmd = ishell.Cmd{
		Name: "replay",
		Help: "FILE decode a raw capture",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("replay FILE"))
				return
			}
			s := ShellFrom(c)
			f, err := os.Open(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			defer f.Close()
			err = s.Session.Replay(f, func(ev Event) {
				c.Println(s.FormatEvent(ev))
			})
			if err != nil {
				c.Err(err)
			}
		},
	}

	// StatsCmd prints parser counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			stats := s.Session.Stats()
			if s.OutputJSON {
				out, _ := json.Marshal(stats)
				c.Println(string(out))
				return
			}
			state, n := s.Session.State()
			c.Printf("bytes %d, frames %d, skipped %d\n", stats.Bytes, stats.Frames, stats.Skipped)
			c.Printf("header crc %d, payload crc %d, unknown type %d\n",
				stats.HeaderErrors, stats.PayloadErrors, stats.TypeErrors)
			c.Printf("%s, %d bytes buffered\n", state, n)
		},
	}

	// ResetCmd starts a new session.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Session = NewSession()
		},
	}

	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Func: func(c *ishell.Context) {
			ports, err := serial.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			for _, p := range ports {
				c.Println(p)
			}
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	defer glog.Flush()
	New().Run(flag.Args()...)
}
