// Package platform classifies the host into one of the supported OS profiles.
package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/shirou/gopsutil/host"

	"setup-devenv/internal/logger"
)

// Tag names a supported OS profile.
type Tag string

const (
	Ubuntu       Tag = "ubuntu"
	MacOS        Tag = "macos"
	AL2023       Tag = "al2023"
	Amazon       Tag = "amazon"
	RedHat       Tag = "redhat"
	Fedora       Tag = "fedora"
	CentOS       Tag = "centos"
	Arch         Tag = "arch"
	GenericLinux Tag = "generic-linux"
)

// Tags lists every profile tag in detection order.
var Tags = []Tag{Ubuntu, MacOS, AL2023, Amazon, RedHat, Fedora, CentOS, Arch, GenericLinux}

// Manager names a package manager binary family.
type Manager string

const (
	Apt    Manager = "apt"
	Dnf    Manager = "dnf"
	Yum    Manager = "yum"
	Pacman Manager = "pacman"
	Brew   Manager = "brew"
)

// ErrUnsupportedPlatform is returned when the host matches no profile.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Host is the immutable result of detection.
type Host struct {
	Tag        Tag
	Manager    Manager
	ID         string // os-release ID, or "darwin"
	VersionID  string
	PrettyName string
	Hostname   string
	Kernel     string
	Arch       string
}

// Probe bundles every source detection reads, so tests can fake a host.
type Probe struct {
	GOOS          string
	ReadOSRelease func() ([]byte, error)
	LookPath      func(name string) (string, error)
	HostInfo      func() (*host.InfoStat, error)
}

// osReleasePaths are tried in order, see os-release(5).
var osReleasePaths = []string{"/etc/os-release", "/usr/lib/os-release"}

// DefaultProbe reads the real machine.
func DefaultProbe() Probe {
	return Probe{
		GOOS: runtime.GOOS,
		ReadOSRelease: func() ([]byte, error) {
			var lastErr error
			for _, p := range osReleasePaths {
				data, err := os.ReadFile(p)
				if err == nil {
					return data, nil
				}
				lastErr = err
			}
			return nil, lastErr
		},
		LookPath: exec.LookPath,
		HostInfo: host.Info,
	}
}

// linuxManagerProbeOrder is used when the distribution ID is not recognized.
var linuxManagerProbeOrder = []struct {
	binary  string
	manager Manager
}{
	{"apt-get", Apt},
	{"dnf", Dnf},
	{"yum", Yum},
	{"pacman", Pacman},
}

// Detect classifies the host described by p.
func Detect(p Probe) (Host, error) {
	h := Host{Arch: runtime.GOARCH}
	if p.HostInfo != nil {
		if info, err := p.HostInfo(); err == nil && info != nil {
			h.Hostname = info.Hostname
			h.Kernel = info.KernelVersion
			if info.KernelArch != "" {
				h.Arch = info.KernelArch
			}
		}
	}

	switch p.GOOS {
	case "darwin":
		h.Tag, h.Manager, h.ID, h.PrettyName = MacOS, Brew, "darwin", "macOS"
		return h, nil
	case "linux":
	default:
		return h, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p.GOOS)
	}

	rel := readRelease(p)
	h.ID, h.VersionID, h.PrettyName = rel.ID(), rel.VersionID(), rel.PrettyName()

	has := func(name string) bool {
		if p.LookPath == nil {
			return false
		}
		_, err := p.LookPath(name)
		return err == nil
	}

	if tag, mgr, ok := classify(rel, has); ok {
		h.Tag, h.Manager = tag, mgr
		logger.Debug("[DEBUG] Detected %s (ID=%s VERSION_ID=%s)\n", tag, h.ID, h.VersionID)
		return h, nil
	}

	for _, probe := range linuxManagerProbeOrder {
		if has(probe.binary) {
			h.Tag, h.Manager = GenericLinux, probe.manager
			logger.Debug("[DEBUG] Unrecognized distribution %q, using %s\n", h.ID, probe.binary)
			return h, nil
		}
	}
	return h, fmt.Errorf("%w: linux distribution %q with no known package manager", ErrUnsupportedPlatform, h.ID)
}

// readRelease loads os-release, falling back to gopsutil's platform guess.
func readRelease(p Probe) OSRelease {
	if p.ReadOSRelease != nil {
		if data, err := p.ReadOSRelease(); err == nil {
			return ParseOSRelease(string(data))
		} else {
			logger.Debug("[DEBUG] os-release unreadable: %v\n", err)
		}
	}
	if p.HostInfo != nil {
		if info, err := p.HostInfo(); err == nil && info != nil && info.Platform != "" {
			return OSRelease{
				"ID":          platformToID(info.Platform),
				"VERSION_ID":  info.PlatformVersion,
				"PRETTY_NAME": strings.TrimSpace(info.Platform + " " + info.PlatformVersion),
			}
		}
	}
	return OSRelease{}
}

// platformToID maps gopsutil platform names to os-release IDs.
func platformToID(platform string) string {
	switch platform {
	case "amazon":
		return "amzn"
	case "redhat":
		return "rhel"
	}
	return platform
}

// classify applies the distribution rules. Amazon Linux goes first so that
// al2023 and amazon are split by VERSION_ID before any generic dnf/yum match.
func classify(rel OSRelease, has func(string) bool) (Tag, Manager, bool) {
	id := rel.ID()
	like := rel.IDLike()

	rpmManager := func() Manager {
		if has("dnf") {
			return Dnf
		}
		return Yum
	}

	switch {
	case id == "amzn":
		if isAL2023(rel.VersionID()) {
			return AL2023, Dnf, true
		}
		return Amazon, Yum, true
	case id == "ubuntu" || id == "debian" || like["ubuntu"] || like["debian"]:
		return Ubuntu, Apt, true
	case id == "fedora":
		return Fedora, Dnf, true
	case id == "centos":
		return CentOS, rpmManager(), true
	case id == "rhel" || id == "rocky" || id == "almalinux" || like["rhel"]:
		return RedHat, rpmManager(), true
	case like["fedora"]:
		return Fedora, Dnf, true
	case id == "arch" || id == "manjaro" || id == "endeavouros" || like["arch"]:
		return Arch, Pacman, true
	}
	return "", "", false
}

var al2023Version = version.Must(version.NewVersion("2023"))

func isAL2023(versionID string) bool {
	v, err := version.NewVersion(versionID)
	if err != nil {
		return false
	}
	return v.GreaterThanOrEqual(al2023Version)
}
