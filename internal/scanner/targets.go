package scanner

import (
	"bufio"
	"os"
	"strings"
)

// LoadTargets reads one URL per line. Blank lines and lines starting with #
// are skipped.
func LoadTargets(filePath string) ([]string, error) {
	var urls []string
	file, err := os.Open(filePath)
	if err != nil {
		return urls, err
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}
