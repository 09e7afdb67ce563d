// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package instructions loads the description of a batch: the commands to run and how to schedule them.
//
// Files are JSON, YAML, TOML or HCL, picked by extension. JSON, YAML and TOML share one schema:
//
//	{"workspace_name": "main", "jobs": 0, "print_command": true,
//	 "buffer_output": false, "keep_going": false,
//	 "commands": [{"tag": "//:lint", "path": "tools/lint.sh", "args": ["--fix"], "env": {"FOO": "bar"}}]}
//
// HCL uses the same top level attributes and one block per command, labelled with its tag:
//
//	jobs = 1
//	command "//:lint" {
//	  path = "tools/lint.sh"
//	  args = ["--fix", env.HOME]
//	}
//
// Sources that are not local files are fetched with Hashicorp's go-getter.
package instructions
