package storage

import (
	"fmt"
	"sync"

	"github.com/bloomkart/bloomkart/config"
	"github.com/bloomkart/bloomkart/pkg/logger"
)

var (
	mu      sync.RWMutex
	disks   = map[string]Disk{}
	defName = "local"
)

// Connect builds the configured disks. The local disk always exists; the s3
// disk is added when S3_BUCKET is set. STORAGE_DISK selects the default.
func Connect() error {
	mu.Lock()
	defer mu.Unlock()

	disks["local"] = NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())

	if config.StorageS3Bucket() != "" {
		s3disk, err := NewS3Disk(S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
		if err != nil {
			return err
		}
		disks["s3"] = s3disk
	}

	defName = config.StorageDefault()
	if _, ok := disks[defName]; !ok {
		logger.Warn("storage: configured default disk unavailable, using local", "disk", defName)
		defName = "local"
	}
	return nil
}

// DiskByName returns a named disk.
func DiskByName(name string) (Disk, error) {
	mu.RLock()
	defer mu.RUnlock()

	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: unknown disk %q", name)
	}
	return d, nil
}

// Default returns the default disk.
func Default() Disk {
	mu.RLock()
	defer mu.RUnlock()
	return disks[defName]
}

// Put writes to the default disk.
func Put(path string, content []byte, contentType string) error {
	d := Default()
	if d == nil {
		return fmt.Errorf("storage: not connected")
	}
	return d.Put(path, content, contentType)
}

// URL builds a public URL on the default disk.
func URL(path string) string {
	d := Default()
	if d == nil {
		return path
	}
	return d.URL(path)
}
