package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kayz/cue/internal/config"
)

// Auditor appends one JSON line per test run to a daily file and prunes
// files older than the retention window.
type Auditor struct {
	dir           string
	prefix        string
	retentionDays int
	now           func() time.Time

	mu sync.Mutex
}

type auditRecord struct {
	Timestamp      string `json:"timestamp"`
	DocumentDigest string `json:"document_digest"`
	View           string `json:"view,omitempty"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Outcome        string `json:"outcome"`
	Error          string `json:"error,omitempty"`
	ResponseChars  int    `json:"response_chars"`
	DurationMS     int64  `json:"duration_ms"`
}

// NewAuditor returns nil when auditing is disabled. dir must already be
// resolved to an absolute location.
func NewAuditor(cfg config.AuditConfig, dir string) *Auditor {
	if !cfg.Enabled {
		return nil
	}
	prefix := strings.TrimSpace(cfg.FilePrefix)
	if prefix == "" {
		prefix = "cue-test"
	}
	return &Auditor{
		dir:           dir,
		prefix:        prefix,
		retentionDays: cfg.RetentionDays,
		now:           time.Now,
	}
}

// Digest fingerprints a rendered document so runs of the same prompt group together.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (a *Auditor) record(run TestRequest, provider, response string, runErr error, took time.Duration) error {
	if a == nil {
		return nil
	}
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	now := a.now()
	rec := auditRecord{
		Timestamp:      now.Format(time.RFC3339),
		DocumentDigest: run.Digest,
		View:           run.View,
		Provider:       provider,
		Model:          run.Model,
		Prompt:         run.Prompt,
		Outcome:        "ok",
		ResponseChars:  len([]rune(response)),
		DurationMS:     took.Milliseconds(),
	}
	if rec.DocumentDigest == "" {
		rec.DocumentDigest = Digest(run.Prompt)
	}
	if runErr != nil {
		rec.Outcome = "error"
		rec.Error = runErr.Error()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	path := filepath.Join(a.dir, fmt.Sprintf("%s-%s.jsonl", a.prefix, now.Format("2006-01-02")))
	if err := appendJSONL(path, line); err != nil {
		return err
	}
	return a.cleanupLocked(now)
}

func appendJSONL(filePath string, line []byte) error {
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit file: %w", err)
	}
	return nil
}

// Cleanup removes audit files past the retention window.
func (a *Auditor) Cleanup() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cleanupLocked(a.now())
}

func (a *Auditor) cleanupLocked(now time.Time) error {
	if a.retentionDays <= 0 {
		return nil
	}

	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list audit dir: %w", err)
	}

	cutoff := startOfDay(now.AddDate(0, 0, -a.retentionDays))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, a.prefix+"-") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		day, ok := parseAuditDate(name, a.prefix)
		if !ok || !day.Before(cutoff) {
			continue
		}
		path := filepath.Join(a.dir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove old audit file %s: %w", path, err)
		}
	}
	return nil
}

func parseAuditDate(filename, prefix string) (time.Time, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(filename, prefix+"-"), ".jsonl")
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
