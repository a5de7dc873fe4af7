package platform

import "git.home.luguber.info/inful/crosspy/internal/foundation/errors"

type profileKey struct {
	cpu, os, abi string
}

// profile holds every derived attribute for one (cpu, os, abi) combination.
type profile struct {
	systemName          string
	systemProcessor     string
	archFlags           string
	packageArchitecture string
	multiarchDir        string
}

var profiles = map[profileKey]profile{
	{"x86_64", "linux", "gnu"}: {
		systemName:          "Linux",
		systemProcessor:     "x86_64",
		archFlags:           "-march=x86-64 -mtune=generic",
		packageArchitecture: "amd64",
		multiarchDir:        "x86_64-linux-gnu",
	},
	{"aarch64", "linux", "gnu"}: {
		systemName:          "Linux",
		systemProcessor:     "aarch64",
		archFlags:           "-mcpu=cortex-a53+crc+simd",
		packageArchitecture: "arm64",
		multiarchDir:        "aarch64-linux-gnu",
	},
	{"armv8", "linux", "gnueabihf"}: {
		systemName:          "Linux",
		systemProcessor:     "armv8l",
		archFlags:           "-mcpu=cortex-a53+crc+simd -mfpu=neon-fp-armv8 -mfloat-abi=hard",
		packageArchitecture: "armhf",
		multiarchDir:        "arm-linux-gnueabihf",
	},
	{"armv7", "linux", "gnueabihf"}: {
		systemName:          "Linux",
		systemProcessor:     "armv7l",
		archFlags:           "-march=armv7-a -mfpu=neon -mfloat-abi=hard",
		packageArchitecture: "armhf",
		multiarchDir:        "arm-linux-gnueabihf",
	},
	{"armv6", "linux", "gnueabihf"}: {
		systemName:          "Linux",
		systemProcessor:     "armv6l",
		archFlags:           "-mcpu=arm1176jzf-s -mfpu=vfp -mfloat-abi=hard",
		packageArchitecture: "armhf",
		multiarchDir:        "arm-linux-gnueabihf",
	},
}

func (t Triple) lookup(attribute string) (profile, error) {
	p, ok := profiles[profileKey{t.cpu, t.os, t.abi}]
	if !ok {
		return profile{}, errors.UnsupportedPlatform(t.String(), attribute).Build()
	}
	return p, nil
}

// SystemName is the CMAKE_SYSTEM_NAME for the target.
func (t Triple) SystemName() (string, error) {
	p, err := t.lookup("system_name")
	return p.systemName, err
}

// SystemProcessor is the CMAKE_SYSTEM_PROCESSOR for the target.
func (t Triple) SystemProcessor() (string, error) {
	p, err := t.lookup("system_processor")
	return p.systemProcessor, err
}

// ArchFlags are the compiler flags selecting the target CPU and floating point ABI.
func (t Triple) ArchFlags() (string, error) {
	p, err := t.lookup("arch_flags")
	return p.archFlags, err
}

// PackageArchitecture is the Debian architecture label used for artifact naming.
func (t Triple) PackageArchitecture() (string, error) {
	p, err := t.lookup("package_architecture")
	return p.packageArchitecture, err
}

// MultiarchDir is the Debian multiarch library directory name.
func (t Triple) MultiarchDir() (string, error) {
	p, err := t.lookup("multiarch_dir")
	return p.multiarchDir, err
}

// Validate runs every derivation and returns the first failure.
func (t Triple) Validate() error {
	if t.IsZero() {
		return errors.MalformedTriple("").Build()
	}
	derivations := []func() (string, error){
		t.SystemName, t.SystemProcessor, t.ArchFlags, t.PackageArchitecture, t.MultiarchDir,
	}
	for _, derive := range derivations {
		if _, err := derive(); err != nil {
			return err
		}
	}
	return nil
}
