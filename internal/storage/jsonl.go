package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"landauSwap/internal/model"
)

const maxSettlementLine = 1 << 20

// JsonlSettlementSink appends settlements to a JSONL file.
type JsonlSettlementSink struct {
	path string
	mu   sync.Mutex
}

func NewJsonlSettlementSink(path string) *JsonlSettlementSink {
	return &JsonlSettlementSink{path: path}
}

// PutSettlements appends a batch of settlements as JSON lines.
func (s *JsonlSettlementSink) PutSettlements(_ context.Context, settlements []model.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open settlement log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, settlement := range settlements {
		line, err := json.Marshal(settlement)
		if err != nil {
			return fmt.Errorf("marshal settlement: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write settlement: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush settlement log: %w", err)
	}
	return file.Sync()
}

// ListSettlements scans the log for poolID.
func (s *JsonlSettlementSink) ListSettlements(_ context.Context, poolID string) ([]model.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open settlement log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSettlementLine)

	var result []model.Settlement
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var settlement model.Settlement
		if err := json.Unmarshal(scanner.Bytes(), &settlement); err != nil {
			return nil, fmt.Errorf("parse settlement line %d: %w", lineNo, err)
		}
		if settlement.PoolID == poolID {
			result = append(result, settlement)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan settlement log: %w", err)
	}
	return result, nil
}

var (
	_ SettlementSink   = (*JsonlSettlementSink)(nil)
	_ SettlementReader = (*JsonlSettlementSink)(nil)
)
