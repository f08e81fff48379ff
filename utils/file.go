// utils/file.go
package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// uploadRoot is the local fallback location for PGN files when no S3
// credentials are configured.
const uploadRoot = "uploads"

func EnsureUploadDir() error {
	return os.MkdirAll(uploadRoot, os.ModePerm)
}

// GetUploadPath maps an object key onto the local uploads directory.
func GetUploadPath(key string) string {
	return filepath.Join(uploadRoot, key)
}

// SaveFile writes an uploaded multipart file to destPath, creating parent
// directories as needed (keys carry a pgn/ prefix).
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
