package render

import (
	"fmt"
	"os"

	"redstring/internal/scene"
)

// ExportTXT writes the board exactly as the scene's viewport shows it,
// without colors.
func ExportTXT(sc *scene.Scene, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range Draw(sc).Lines() {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}
