package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgCyan)
	labelColor   = color.New(color.Faint)
)

func printSuccess(format string, args ...interface{}) {
	successColor.Fprintf(os.Stdout, "✓ "+format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	infoColor.Fprintf(os.Stdout, format+"\n", args...)
}

func printField(label, format string, args ...interface{}) {
	labelColor.Fprintf(os.Stdout, "  %-16s", label)
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// writeFileAtomic writes to a uniquely named temp file next to the
// target and renames it into place, so a crash never leaves a partial
// envelope behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
