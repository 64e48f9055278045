// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Unified argument parsing for bychat subcommands.
//
// Each command handler receives its raw argument slice and parses it
// with ArgParser so flags, subcommands, and positionals behave the
// same everywhere.

package cli

import "strings"

// ArgParser parses a command's raw arguments.
// It handles multiple flag formats consistently:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: arguments without flags
//   - Subcommands: first positional argument
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser creates a parser from raw arguments.
//
// Example:
//
//	p := NewArgParser([]string{"export", "a1b2c3", "--format=json", "--output", "out.json"})
//	p.Subcommand()     // "export"
//	p.Positional(1)    // "a1b2c3"
//	p.Flag("format")   // "json"
//	p.Flag("output")   // "out.json"
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0, len(raw)),
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if strings.HasPrefix(arg, "-") {
			// --flag=value form
			if strings.Contains(arg, "=") {
				parts := strings.SplitN(arg, "=", 2)
				name := strings.TrimLeft(parts[0], "-")
				value := parts[1]
				// booleans may be explicit: --json=true
				if value == "true" || value == "false" {
					p.boolFlags[name] = value == "true"
				} else {
					p.flags[name] = value
				}
				i++
				continue
			}

			name := strings.TrimLeft(arg, "-")

			// --flag value form when the next arg is not a flag
			if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
				p.flags[name] = raw[i+1]
				i += 2
			} else {
				p.boolFlags[name] = true
				i++
			}
		} else {
			p.positional = append(p.positional, arg)
			i++
		}
	}

	if len(p.positional) > 0 {
		p.subcommand = p.positional[0]
	}

	return p
}

// Subcommand returns the first positional argument, or "" if none.
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a string flag, or "" if not set.
func (p *ArgParser) Flag(name string) string {
	if val, ok := p.flags[name]; ok {
		return val
	}
	name = strings.TrimLeft(name, "-")
	if val, ok := p.flags[name]; ok {
		return val
	}
	return ""
}

// FlagOrDefault returns the flag value or a default if not set.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if val := p.Flag(name); val != "" {
		return val
	}
	return defaultValue
}

// BoolFlag reports whether a boolean flag is set.
func (p *ArgParser) BoolFlag(name string) bool {
	if val, ok := p.boolFlags[name]; ok {
		return val
	}
	name = strings.TrimLeft(name, "-")
	return p.boolFlags[name]
}

// Positional returns the positional argument at index, or "" if out of
// range. Index 0 is the subcommand.
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns all positional arguments starting at index.
// Useful for joining trailing words into a query.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return nil
	}
	return p.positional[index:]
}
