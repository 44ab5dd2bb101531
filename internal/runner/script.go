package runner

import (
	"fmt"
	"strings"

	"github.com/firmlab/firmlab/internal/model"
)

// renderScript materializes one test case as a bash script for in-container
// execution. The script fails fast if the firmware is missing, then walks
// the test's steps; the exit code is the only pass/fail channel.
func renderScript(test model.TestCase, firmwarePath string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `#!/bin/bash
# Auto-generated test script
# Test: %s

set -e

echo "Starting test: %s"
echo "Firmware: %s"

if [ ! -f "%s" ]; then
    echo "ERROR: Firmware not found"
    exit 1
fi
`, test.Name, test.Name, firmwarePath, firmwarePath)

	for i, step := range test.Steps {
		fmt.Fprintf(&sb, "\necho \"Step %d: %s\"\nsleep 0.5\n", i+1, step.Action)
	}

	sb.WriteString("\necho \"Test completed successfully\"\nexit 0\n")
	return sb.String()
}
