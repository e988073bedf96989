// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SQLWard Contributors

// Package history persists chat transcripts as JSONL session files, one
// record per line, one file per session.
package history

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sqlward-dev/sqlward/internal/conversation"
	sqlwarderr "github.com/sqlward-dev/sqlward/pkg/errors"
)

// dirName is the subdirectory of the data dir holding session files.
const dirName = "chat_history"

// ToolCallRecord is the serialized form of one tool invocation request.
type ToolCallRecord struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Record is one line of a session file.
type Record struct {
	Timestamp  time.Time        `json:"timestamp"`
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []ToolCallRecord `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

// Log appends transcript messages to a single session's JSONL file. It
// satisfies the engine's Recorder interface and is safe for concurrent use.
type Log struct {
	mu        sync.Mutex
	sessionID string
	path      string
	now       func() time.Time
}

// NewLog creates the chat_history directory under dataDir if needed and
// starts a new session file named after a fresh session ID. The file itself
// is created lazily on first append.
func NewLog(dataDir string) (*Log, error) {
	dir := filepath.Join(dataDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, sqlwarderr.Wrap(err, sqlwarderr.CodeHistoryWriteFailure, "creating history directory",
			sqlwarderr.Field("dir", dir))
	}

	sessionID := uuid.NewString()
	return &Log{
		sessionID: sessionID,
		path:      filepath.Join(dir, "session_"+sessionID+".jsonl"),
		now:       time.Now,
	}, nil
}

// SessionID returns the identifier minted for this session.
func (l *Log) SessionID() string {
	return l.sessionID
}

// Path returns the session file's location.
func (l *Log) Path() string {
	return l.path
}

// Append writes one message as a JSONL record. Each append opens, writes,
// and closes the file, so a crash loses at most the in-flight record.
func (l *Log) Append(_ context.Context, msg conversation.Message) error {
	record := Record{
		Timestamp:  l.now().UTC(),
		Role:       string(msg.Role),
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}
	for _, call := range msg.ToolCalls {
		record.ToolCalls = append(record.ToolCalls, ToolCallRecord{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: call.Arguments,
		})
	}

	line, err := json.Marshal(record)
	if err != nil {
		return sqlwarderr.Wrap(err, sqlwarderr.CodeHistoryWriteFailure, "encoding history record",
			sqlwarderr.FieldSessionID(l.sessionID))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return sqlwarderr.Wrap(err, sqlwarderr.CodeHistoryWriteFailure, "opening session file",
			sqlwarderr.FieldSessionID(l.sessionID))
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return sqlwarderr.Wrap(err, sqlwarderr.CodeHistoryWriteFailure, "writing history record",
			sqlwarderr.FieldSessionID(l.sessionID))
	}
	return nil
}

// LoadSession reads every record of a session file in order. Blank lines
// are skipped; a malformed line fails the whole load.
func LoadSession(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sqlwarderr.Wrap(err, sqlwarderr.CodeHistoryReadFailure, "opening session file",
			sqlwarderr.Field("path", path))
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, sqlwarderr.Wrap(err, sqlwarderr.CodeHistoryReadFailure, "decoding history record",
				sqlwarderr.Field("path", path))
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, sqlwarderr.Wrap(err, sqlwarderr.CodeHistoryReadFailure, "reading session file",
			sqlwarderr.Field("path", path))
	}
	return records, nil
}

// RecentSessions returns up to n session file paths under dataDir, newest
// first by modification time. A missing history directory yields no paths.
func RecentSessions(dataDir string, n int) ([]string, error) {
	dir := filepath.Join(dataDir, dirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, sqlwarderr.Wrap(err, sqlwarderr.CodeHistoryReadFailure, "listing history directory",
			sqlwarderr.Field("dir", dir))
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".jsonl" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(dir, name),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime.After(candidates[j].modTime)
	})

	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	paths := make([]string, 0, len(candidates))
	for _, c := range candidates {
		paths = append(paths, c.path)
	}
	return paths, nil
}
