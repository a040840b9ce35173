// FILE: lixenwraith/lconfig/doc.go

// Package lconfig reads a line-oriented configuration format into a
// section-scoped, multi-valued store and resolves ${...} references on
// every read.
//
// Format:
//
//	# before any header: the default section
//	name = demo
//	root = /srv/${name}
//
//	[server]
//	host = 0.0.0.0
//	# a repeated key adds a second value
//	allow = 10.0.0.0/8
//	allow = 192.168.0.0/16
//	# an empty key continues the previous value
//	motd = first line
//	     = second line
//	logs = ${root}/log
//	peer = ${cache:host}
//	cost = $$5
//
// Comments take a whole line. ${root} falls back to the default section,
// ${cache:host} names a section explicitly, and $$ is a literal dollar sign.
//
// Every assignment appends to the option's value list; single-value reads
// return the last one. Options of the default section are visible from all
// sections unless overridden.
//
// Features:
//   - Ordered merge of text, dict, TOML, YAML, JSON and environment sources
//   - Include files listed by an option, applied before the including file
//   - Named converters (listing, lines, boolean, integer, ...) selected per key
//     with ".convert." keys, and adapters for Set selected with ".adapt." keys
//   - Struct decoding with mapstructure and go-playground/validator tags
//   - Builder with optional files, file discovery and validators
//   - Watcher publishing rebuilt snapshots on file change
//
// Quick Start:
//
//	cfg, err := lconfig.Quick(map[string]any{"port": 8080}, "MYAPP_", "app.conf")
//	if lconfig.FatalOnly(err) != nil {
//	    log.Fatal(err)
//	}
//	port, _ := cfg.Int64("server", "port")
//	hosts, _ := cfg.Listing("server", "allow")
//
// A Config is not safe for concurrent mutation. Share snapshots through a
// Watcher, or guard access externally.
package lconfig
