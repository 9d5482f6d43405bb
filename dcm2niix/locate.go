package dcm2niix

import (
	"fmt"
	"os"
	"os/exec"
)

// EnvBinary names the environment variable that overrides executable
// discovery with an explicit path.
const EnvBinary = "DCM2NIIX"

const binaryName = "dcm2niix"

// Locate resolves the converter executable: $DCM2NIIX first, then the
// configured path, then a PATH lookup of "dcm2niix". The returned error
// wraps exec.ErrNotFound when the binary cannot be found.
func Locate(configured string) (string, error) {
	candidate := os.Getenv(EnvBinary)
	if candidate == "" {
		candidate = configured
	}
	if candidate == "" {
		candidate = binaryName
	}
	path, err := exec.LookPath(candidate)
	if err != nil {
		return "", fmt.Errorf("locate %s executable: %w", binaryName, err)
	}
	return path, nil
}
