// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build windows

package lifecycle

import "os"

// Windows consoles have no job-control resume signal.
func resumeSignals() []os.Signal {
	return nil
}
