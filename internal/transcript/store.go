package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no transcript is stored for the patient.
var ErrNotFound = errors.New("transcript not found")

// Store persists finalized interview transcripts keyed by patient
// identifier. Storage location and layout are the store's business; callers
// only see text blobs.
type Store interface {
	Write(ctx context.Context, patientID, content string) error
	Read(ctx context.Context, patientID string) (string, error)
	Exists(ctx context.Context, patientID string) (bool, error)
	Delete(ctx context.Context, patientID string) error
}

// FileStore keeps one {patientID}.txt per patient under an Interview/
// subdirectory of the configured base path.
type FileStore struct {
	baseDir string
}

const interviewFolder = "Interview"

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

func (s *FileStore) path(patientID string) (string, error) {
	// Patient IDs come from the URL; keep them from escaping the folder.
	if patientID == "" || strings.ContainsAny(patientID, `/\`) || strings.Contains(patientID, "..") {
		return "", fmt.Errorf("invalid patient id %q", patientID)
	}
	return filepath.Join(s.baseDir, interviewFolder, patientID+".txt"), nil
}

func (s *FileStore) Write(_ context.Context, patientID, content string) error {
	p, err := s.path(patientID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

func (s *FileStore) Read(_ context.Context, patientID string) (string, error) {
	p, err := s.path(patientID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("read transcript for patient %s: %w", patientID, ErrNotFound)
		}
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}

func (s *FileStore) Exists(_ context.Context, patientID string) (bool, error) {
	p, err := s.path(patientID)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *FileStore) Delete(_ context.Context, patientID string) error {
	p, err := s.path(patientID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete transcript for patient %s: %w", patientID, ErrNotFound)
		}
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}
