// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/edgeo-scada/bacnet-objects/bacnet"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start an interactive session on the device",
	Long: `Interactive mode provides a REPL over the configured device. Changes
last for the session.

Commands:
  list                                       - List objects
  read <object> [property|all]               - Read a property
  write <object> <property> <value>          - Write a property
  flags <object> <alarm> <fault> <ovr> <oos> - Set status flags
  encode <object> [property]                 - Show the ReadProperty-ACK
  metrics                                    - Show dispatch metrics
  help                                       - Show help
  exit                                       - Exit interactive mode

Examples:
  bacnet[1234]> list
  bacnet[1234]> read osv:1 pv
  bacnet[1234]> flags osv:2 0 0 0 1
  bacnet[1234]> write osv:2 pv hex:cafe`,

	RunE: runInteractive,
}

func runInteractive(cmd *cobra.Command, args []string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("bacnet[%d]> ", device.Identifier().Instance),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("create readline: %w", err)
	}
	defer rl.Close()

	shell := &shell{out: rl.Stdout()}

	fmt.Fprintln(shell.out, "BACnet Object Shell")
	fmt.Fprintln(shell.out, "Type 'help' for available commands, 'exit' to quit")
	fmt.Fprintln(shell.out)

	for {
		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			return nil
		}

		if !shell.exec(line) {
			fmt.Fprintln(shell.out, "Goodbye!")
			return nil
		}
	}
}

// shell executes REPL lines against the package-level device
type shell struct {
	out io.Writer
}

// exec runs one command line and reports whether the session continues.
func (s *shell) exec(line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "exit", "quit", "q":
		return false

	case "help", "?":
		s.printHelp()

	case "list", "ls":
		s.list()

	case "read", "r":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: read <object> [property|all]")
			return true
		}
		prop := "present-value"
		if len(args) >= 2 {
			prop = args[1]
		}
		s.read(args[0], prop)

	case "write", "w":
		if len(args) < 3 {
			fmt.Fprintln(s.out, "Usage: write <object> <property> <value>")
			return true
		}
		s.write(args[0], args[1], strings.Join(args[2:], " "))

	case "flags":
		if len(args) != 5 {
			fmt.Fprintln(s.out, "Usage: flags <object> <in-alarm> <fault> <overridden> <out-of-service>")
			return true
		}
		s.flags(args[0], args[1:])

	case "encode":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: encode <object> [property]")
			return true
		}
		prop := "present-value"
		if len(args) >= 2 {
			prop = args[1]
		}
		s.encode(args[0], prop)

	case "metrics":
		s.metrics()

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for available commands)\n", command)
	}
	return true
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, `
Available commands:
  list                                    List all objects of the device
  read <object> [property|all]            Read a property (default: present-value)
  write <object> <property> <value>       Write a property value
  flags <object> <alarm> <fault> <ovr> <oos>
                                          Set the four status flags (1/0, true/false)
  encode <object> [property]              Show the ReadProperty-ACK APDU
  metrics                                 Show dispatch metrics
  help                                    Show this help message
  exit                                    Exit interactive mode

Object format: <type>:<instance>
  Examples: octetstring-value:1, osv:1, 47:1

Property shortcuts:
  pv = present-value
  name = object-name
  desc = description
  oid = object-identifier
  type = object-type

Value formats:
  hex:0a0b0c, text:AT+OK, "quoted string"`)
}

func (s *shell) list() {
	snaps := device.Snapshot()
	fmt.Fprintf(s.out, "\nDevice %d has %d objects:\n", device.Identifier().Instance, len(snaps))
	for _, snap := range snaps {
		fmt.Fprintf(s.out, "  %-24s %-20s %4d bytes  %s\n",
			snap.Object, snap.ObjectName, len(snap.PresentValue), formatFlags(snap.StatusFlags))
	}
	fmt.Fprintln(s.out)
}

func (s *shell) read(objStr, propStr string) {
	objectID, propID, err := parseTarget(objStr, propStr)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	if propID == bacnet.PropertyAll {
		results, err := device.ReadPropertyAll(objectID)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", describeError(err))
			return
		}
		for _, r := range results {
			fmt.Fprintf(s.out, "%s.%s = %s\n", objectID, r.PropertyID, formatValue(r.Value))
		}
		return
	}

	value, err := device.ReadProperty(bacnet.ReadPropertyRequest{ObjectID: objectID, PropertyID: propID})
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", describeError(err))
		return
	}

	fmt.Fprintf(s.out, "%s.%s = %s\n", objectID, propID, formatValue(value))
}

func (s *shell) write(objStr, propStr, valStr string) {
	objectID, propID, err := parseTarget(objStr, propStr)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	value, err := parseValue(valStr)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	err = device.WriteProperty(bacnet.WritePropertyRequest{
		ObjectID:   objectID,
		PropertyID: propID,
		Value:      value,
	})
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", describeError(err))
		return
	}

	fmt.Fprintf(s.out, "OK: %s.%s = %s\n", objectID, propID, formatValue(value))
}

func (s *shell) flags(objStr string, values []string) {
	objectID, err := parseObjectIdentifier(objStr)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	var flags [4]bool
	for i, v := range values {
		b, err := cast.ToBoolE(v)
		if err != nil {
			fmt.Fprintf(s.out, "Error: invalid flag %q: %v\n", v, err)
			return
		}
		flags[i] = b
	}

	err = device.WithObject(objectID, func(obj bacnet.Object) error {
		o, ok := obj.(*bacnet.OctetStringValue)
		if !ok {
			return fmt.Errorf("%s has no settable status flags", objectID)
		}
		o.SetStatusFlags(flags[0], flags[1], flags[2], flags[3])
		return nil
	})
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	f := bacnet.StatusFlags{InAlarm: flags[0], Fault: flags[1], Overridden: flags[2], OutOfService: flags[3]}
	fmt.Fprintf(s.out, "OK: %s status-flags = %s\n", objectID, formatFlags(f))
}

func (s *shell) encode(objStr, propStr string) {
	objectID, propID, err := parseTarget(objStr, propStr)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	apdu, err := device.EncodeReadPropertyAck(1, bacnet.ReadPropertyRequest{ObjectID: objectID, PropertyID: propID})
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", describeError(err))
		return
	}

	fmt.Fprintf(s.out, "%d of %d bytes\n%s", len(apdu), device.MaxAPDULength(), hex.Dump(apdu))
}

func (s *shell) metrics() {
	m := device.Metrics().Snapshot()

	fmt.Fprintln(s.out, "\nDevice Metrics:")
	fmt.Fprintf(s.out, "  Uptime:            %s\n", m.Uptime.Round(time.Second))
	fmt.Fprintf(s.out, "  Objects:           %d\n", m.Objects)
	fmt.Fprintf(s.out, "  Reads Served:      %d\n", m.ReadsServed)
	fmt.Fprintf(s.out, "  Reads Failed:      %d\n", m.ReadsFailed)
	fmt.Fprintf(s.out, "  Writes Accepted:   %d\n", m.WritesAccepted)
	fmt.Fprintf(s.out, "  Writes Rejected:   %d\n", m.WritesRejected)
	fmt.Fprintf(s.out, "  Not Writable:      %d\n", m.NotWritable)
	fmt.Fprintf(s.out, "  Oversize Data:     %d\n", m.OversizeData)
	fmt.Fprintf(s.out, "  Duplicate Name:    %d\n", m.DuplicateName)

	if m.LatencyStats.Count > 0 {
		fmt.Fprintf(s.out, "  Avg Latency:       %s\n", m.LatencyStats.Avg)
		fmt.Fprintf(s.out, "  Min Latency:       %s\n", m.LatencyStats.Min)
		fmt.Fprintf(s.out, "  Max Latency:       %s\n", m.LatencyStats.Max)
	}
	fmt.Fprintln(s.out)
}

func parseTarget(objStr, propStr string) (bacnet.ObjectIdentifier, bacnet.PropertyIdentifier, error) {
	objectID, err := parseObjectIdentifier(objStr)
	if err != nil {
		return bacnet.ObjectIdentifier{}, 0, err
	}
	propID, err := parsePropertyIdentifier(propStr)
	if err != nil {
		return bacnet.ObjectIdentifier{}, 0, err
	}
	return objectID, propID, nil
}
