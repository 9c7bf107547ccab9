package data

import (
	"encoding/json"
	"os"
	"path"
	"syscall"

	"github.com/stuartleeks/home-dash/forecast-ring/config"
)

func getPath(filename string) string {
	if path.IsAbs(filename) {
		return filename
	}
	return path.Join(config.GetDataDir(), filename)
}

// JsonReadSharedLock decodes a JSON file while holding a shared flock so a
// concurrent editor cannot hand us a half-written file.
func JsonReadSharedLock[T any](filename string) (*T, error) {
	filePath := getPath(filename)

	file, err := os.OpenFile(filePath, os.O_RDONLY, 0666)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// lock the file (shared lock)
	if err = syscall.Flock(int(file.Fd()), syscall.LOCK_SH); err != nil {
		return nil, err
	}
	defer func() { _ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN) }()

	var data T
	err = json.NewDecoder(file).Decode(&data)
	if err != nil {
		return nil, err
	}

	return &data, nil
}
