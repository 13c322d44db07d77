// ABOUTME: Small filesystem helpers shared by tracker tests.
// ABOUTME: Kept apart so the main test file reads top to bottom.
package tracker

import "os"

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
