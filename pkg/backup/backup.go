package backup

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sync"

	"ytrelink/pkg/config"
	errs "ytrelink/pkg/errors"
	"ytrelink/pkg/logger"
	"ytrelink/pkg/models"
)

// DefaultFileName is used when no backup path is configured
const DefaultFileName = "backup.csv"

// Header is the first row of every backup file
var Header = []string{"videoId", "description"}

// Log is an append-only CSV backup file
type Log struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex
}

// NewLog creates a backup log at path, or at the default location in the
// data directory when path is empty. The file is created lazily.
func NewLog(path string, log logger.Logger) (*Log, error) {
	resolved, err := config.ResolveDataPath(path, DefaultFileName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, err, "failed to resolve backup path")
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Log{
		path:   resolved,
		logger: log,
	}, nil
}

// Path returns the backup file location
func (l *Log) Path() string {
	return l.path
}

// Append durably adds records to the end of the log. Nothing is written
// when records is empty.
func (l *Log) Append(records []models.BackupRecord) error {
	if len(records) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to create backup directory")
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to open backup file")
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to stat backup file")
	}

	w := csv.NewWriter(file)
	if stat.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return errs.Wrap(errs.ErrorTypeStorage, err, "failed to write backup header")
		}
	}

	for _, r := range records {
		if err := w.Write([]string{r.ID, r.Text}); err != nil {
			return errs.Wrap(errs.ErrorTypeStorage, err, "failed to write backup record %s", r.ID)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to flush backup file")
	}

	if err := file.Sync(); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to sync backup file")
	}

	l.logger.DebugWithFields("Backup records appended", map[string]interface{}{
		"path":    l.path,
		"records": len(records),
	})

	return nil
}

// ReadAll returns every record in the log in file order
func (l *Log) ReadAll() ([]models.BackupRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.ErrorTypeStorage, err, "failed to open backup file")
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(Header)

	var records []models.BackupRecord
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeParsing, err, "failed to read backup file %s", l.path)
		}
		if first {
			first = false
			if row[0] == Header[0] && row[1] == Header[1] {
				continue
			}
		}
		records = append(records, models.BackupRecord{ID: row[0], Text: row[1]})
	}

	return records, nil
}
