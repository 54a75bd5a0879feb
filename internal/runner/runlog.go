package runner

import (
	"fmt"
	"os"
	"time"
)

// appendRunLog adds one line per merged scene to the variable's extraction
// log. The log mirrors the table history in a human-readable form and is
// never read back by the program.
func appendRunLog(path, sceneID, tablePath string, elapsed time.Duration) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer file.Close()

	line := fmt.Sprintf("ID %s. Date: %s. Process time: %d s. Table: %s.\n",
		sceneID, time.Now().Format("2006-01-02 15:04:05"), int(elapsed.Seconds()), tablePath)
	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("append run log: %w", err)
	}
	return nil
}
