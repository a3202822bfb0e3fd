// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the Bloomi CLI.
package main

import (
	"bloomi/cli/cmd"
)

func main() {
	cmd.Execute()
}
