package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
	CmdCommand      = "cmd"
	StartCommand    = "start"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
	WindowsCmdFlag     = "/c"
)

// DefaultDownloadSubdir is appended to the user's videos directory.
const DefaultDownloadSubdir = "FBGrabber"

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// ErrFileNotFound is returned by the open helpers when the target is missing.
var ErrFileNotFound = errors.New("file does not exist")

// commandRunner starts external programs. Replaced in tests.
var commandRunner = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// OpenFileInManager opens the file in the system file manager and highlights it
func OpenFileInManager(filePath string) error {
	absPath, err := existingAbs(filePath)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case OSDarwin:
		return commandRunner(OpenCommand, MacOSSelectFlag, absPath)
	case OSWindows:
		return commandRunner(ExplorerCommand, WindowsSelectParam, absPath)
	case OSLinux:
		// selection is not standardized on Linux, open the parent directory
		return openDirectoryLinux(filepath.Dir(absPath))
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// OpenFileWithDefaultApp opens the file with the default system application
func OpenFileWithDefaultApp(filePath string) error {
	absPath, err := existingAbs(filePath)
	if err != nil {
		return err
	}
	return openPath(absPath)
}

// OpenDirectory opens a directory in the file manager, creating it first.
func OpenDirectory(dirPath string) error {
	if err := CreateDirectoryIfNotExists(dirPath); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if runtime.GOOS == OSLinux {
		return openDirectoryLinux(absPath)
	}
	return openPath(absPath)
}

func openPath(absPath string) error {
	switch runtime.GOOS {
	case OSDarwin:
		return commandRunner(OpenCommand, absPath)
	case OSWindows:
		return commandRunner(CmdCommand, WindowsCmdFlag, StartCommand, "", absPath)
	case OSLinux:
		return commandRunner(XDGOpenCommand, absPath)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

func openDirectoryLinux(dir string) error {
	if err := commandRunner(XDGOpenCommand, dir); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return commandRunner(fm, dir)
		}
	}

	return fmt.Errorf("no suitable file manager found")
}

func existingAbs(filePath string) (string, error) {
	if filePath == "" {
		return "", ErrFileNotFound
	}
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return absPath, nil
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	info, err := os.Stat(dirPath)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dirPath)
		}
		return nil
	}
	return os.MkdirAll(dirPath, DefaultDirPermissions)
}

// GetDefaultDownloadDir returns ~/Videos/FBGrabber.
func GetDefaultDownloadDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Videos", DefaultDownloadSubdir), nil
}

// EnsureUniquePath returns path if nothing exists there, otherwise the first
// free "name (n).ext" sibling starting at n=1.
func EnsureUniquePath(path string) string {
	if !exists(path) {
		return path
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// NameRegistry hands out destination stems that collide neither with files
// already in the directory nor with stems reserved by concurrent transfers.
// The extension is unknown until the transfer finishes, so a stem counts as
// taken when any file named "stem" or "stem.*" exists.
type NameRegistry struct {
	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewNameRegistry creates an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{reserved: make(map[string]struct{})}
}

// Reserve returns dir/stem or dir/"stem (n)" and marks it taken until Release.
func (r *NameRegistry) Reserve(dir, stem string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := dirNames(dir)
	candidate := stem
	for i := 1; ; i++ {
		full := filepath.Join(dir, candidate)
		if _, ok := r.reserved[full]; !ok && !stemTaken(names, candidate) {
			r.reserved[full] = struct{}{}
			return full
		}
		candidate = fmt.Sprintf("%s (%d)", stem, i)
	}
}

// Release frees a stem returned by Reserve.
func (r *NameRegistry) Release(stemPath string) {
	r.mu.Lock()
	delete(r.reserved, stemPath)
	r.mu.Unlock()
}

func dirNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func stemTaken(names []string, stem string) bool {
	for _, name := range names {
		if name == stem || strings.HasPrefix(name, stem+".") {
			return true
		}
	}
	return false
}
