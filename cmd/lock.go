package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

const playbackLockDirName = "mcp-speak-playback.lock.d"

// lockInfo is the metadata written inside the lock directory so other
// instances can tell whether the holder is still alive.
type lockInfo struct {
	PID       int       `json:"pid"`
	StartTime time.Time `json:"start_time"`
	Hostname  string    `json:"hostname"`
}

// playbackLock coordinates audible playback across concurrently running
// server instances. mkdir is atomic on every filesystem, so the lock is
// a directory with a metadata file inside it.
type playbackLock struct {
	dir      string
	infoFile string
}

// acquirePlaybackLock takes the cross-instance playback lock when
// --sequential is set; otherwise it is a no-op. The returned release
// function must always be called.
func acquirePlaybackLock(ctx context.Context) (release func(), err error) {
	if !sequentialTTS {
		return func() {}, nil
	}

	dir := filepath.Join("/tmp", playbackLockDirName)
	if runtime.GOOS == "windows" {
		dir = filepath.Join(os.TempDir(), playbackLockDirName)
	}

	lock := &playbackLock{
		dir:      dir,
		infoFile: filepath.Join(dir, "info.json"),
	}

	log.Debug("Acquiring playback lock", "dir", dir, "pid", os.Getpid())
	if err := lock.acquire(ctx); err != nil {
		return nil, err
	}
	return func() {
		lock.release()
		log.Debug("Released playback lock", "dir", dir, "pid", os.Getpid())
	}, nil
}

// acquire retries atomic directory creation until it wins the lock,
// cleaning up stale holders along the way.
func (l *playbackLock) acquire(ctx context.Context) error {
	for {
		err := os.Mkdir(l.dir, 0o755)
		if err == nil {
			hostname, _ := os.Hostname()
			info := lockInfo{
				PID:       os.Getpid(),
				StartTime: time.Now(),
				Hostname:  hostname,
			}
			if data, err := json.Marshal(info); err == nil {
				os.WriteFile(l.infoFile, data, 0o644)
			}
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lock directory: %w", err)
		}

		if l.reclaimStale() {
			continue
		}

		// Jittered wait to avoid synchronized retries between instances.
		jitter := time.Duration(25+rand.Intn(50)) * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitter):
		}
	}
}

func (l *playbackLock) release() {
	os.Remove(l.infoFile)
	if err := os.Remove(l.dir); err != nil {
		// Stale detection in other instances will clean this up.
		log.Debug("Failed to remove lock directory", "dir", l.dir, "error", err)
	}
}

// reclaimStale claims a stale lock directory via atomic rename and
// removes it. Returns true if the caller should retry acquisition.
func (l *playbackLock) reclaimStale() bool {
	if !l.isStale() {
		return false
	}

	claimed := l.dir + ".stale." + strconv.Itoa(os.Getpid()) + "." + strconv.FormatInt(time.Now().UnixNano(), 36)
	if err := os.Rename(l.dir, claimed); err != nil {
		// Another instance already cleaned it up or re-acquired it.
		return false
	}

	log.Debug("Reclaimed stale playback lock", "dir", l.dir, "pid", os.Getpid())
	os.RemoveAll(claimed)
	return true
}

// isStale prefers process liveness over age: a lock held by a running
// process is never stale, no matter how long playback takes. Only when
// the metadata is unreadable does directory age decide, with a generous
// grace period for a holder that hasn't written its info yet.
func (l *playbackLock) isStale() bool {
	if data, err := os.ReadFile(l.infoFile); err == nil {
		var info lockInfo
		if json.Unmarshal(data, &info) == nil {
			return !isProcessAlive(info.PID)
		}
	}

	const grace = 5 * time.Minute
	if fi, err := os.Stat(l.dir); err == nil {
		return time.Since(fi.ModTime()) > grace
	}
	return true
}
