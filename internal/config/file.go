package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/echobridge/voicerecog/internal/logging"
)

// DefaultBackupCount is the number of backup versions kept by WriteTemplate.
const DefaultBackupCount = 3

const templateBody = `# voicerecog configuration
#
# language: default language hint passed to every speech provider.
language: zh

# speech_api: provider name -> credentials. Only configured providers are
# constructed; order of recognition output is baidu, then bing.
speech_api:
  baidu:
    api_key: ""
    secret_key: ""
#  bing:
#    subscription_key: ""
`

// WriteTemplate writes a commented starter config to path (or the default
// path when empty), backing up any existing file first.
func WriteTemplate(path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		if err := createBackup(path, DefaultBackupCount); err != nil {
			logging.L_warn("config: backup failed, continuing with write", "error", err)
		}
	}

	if err := AtomicWrite(path, []byte(templateBody), 0600); err != nil {
		return err
	}

	logging.L_info("config: template written", "path", path)
	return nil
}

// AtomicWrite writes data to path atomically using temp file + rename.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Create temp file in same directory (same filesystem for atomic rename)
	tmp, err := os.CreateTemp(dir, ".voicerecog-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Clean up temp file on any error
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp to target: %w", err)
	}

	success = true
	return nil
}

// createBackup rotates existing backups and copies the current file to .bak
func createBackup(path string, maxBackups int) error {
	rotateBackups(path, maxBackups)

	backupPath := path + ".bak"
	if err := copyFile(path, backupPath); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	logging.L_debug("config: created backup", "path", backupPath)
	return nil
}

// rotateBackups rotates backup files:
// .bak.N (oldest) gets deleted, .bak.N-1 -> .bak.N, ..., .bak -> .bak.1
func rotateBackups(path string, maxBackups int) {
	if maxBackups <= 1 {
		return
	}

	backupBase := path + ".bak"
	maxIndex := maxBackups - 1

	oldestPath := fmt.Sprintf("%s.%d", backupBase, maxIndex)
	if err := os.Remove(oldestPath); err != nil && !os.IsNotExist(err) {
		logging.L_trace("config: failed to remove oldest backup", "path", oldestPath, "error", err)
	}

	for i := maxIndex - 1; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", backupBase, i)
		dst := fmt.Sprintf("%s.%d", backupBase, i+1)
		if err := os.Rename(src, dst); err != nil && !os.IsNotExist(err) {
			logging.L_trace("config: failed to rotate backup", "src", src, "dst", dst, "error", err)
		}
	}

	if err := os.Rename(backupBase, backupBase+".1"); err != nil && !os.IsNotExist(err) {
		logging.L_trace("config: failed to rotate .bak to .bak.1", "error", err)
	}
}

// copyFile copies a file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
