package targetloader

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
)

// TargetFileLoader implements the port.TargetProvider interface by loading
// targets from a text file. Each line is "chain,address[,portfolioId]";
// blank lines and lines starting with # are ignored.
type TargetFileLoader struct {
	filePath string
	logger   *slog.Logger
}

// NewTargetFileLoader creates a new TargetFileLoader.
func NewTargetFileLoader(filePath string, logger *slog.Logger) port.TargetProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &TargetFileLoader{filePath: filePath, logger: logger}
}

// GetTargets reads targets from the configured file path. Malformed lines are
// skipped with a warning.
func (l *TargetFileLoader) GetTargets() ([]entity.Target, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open target file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var targets []entity.Target
	seen := make(map[entity.TargetKey]struct{})
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) < 2 || len(fields) > 3 || fields[0] == "" || fields[1] == "" {
			l.logger.Warn("Skipping malformed target line", "file", l.filePath, "line_number", lineNum, "line", line)
			continue
		}

		target := entity.Target{Chain: fields[0], Address: fields[1]}
		if len(fields) == 3 {
			target.PortfolioID = fields[2]
		}
		if _, dup := seen[target.Key()]; dup {
			l.logger.Warn("Skipping duplicate target", "file", l.filePath, "line_number", lineNum, "target", target.Key().String())
			continue
		}
		seen[target.Key()] = struct{}{}
		targets = append(targets, target)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning target file %s: %w", l.filePath, err)
	}

	l.logger.Info("Targets loaded successfully from file", "count", len(targets), "path", l.filePath)
	return targets, nil
}
