package remote

import (
	"fmt"
	"strconv"

	"github.com/conn-castle/agent-deploy/internal/config"
)

// DefaultSSHPort is used when the store leaves SSH_PORT unset.
const DefaultSSHPort = 22

// Target identifies the host a probe or remediation runs against.
type Target struct {
	Address      string
	User         string
	Port         int
	IdentityFile string
}

// TargetFromSnapshot builds a Target from store values.
// Placeholder values resolve to empty so Valid reports them.
func TargetFromSnapshot(snap config.Snapshot) Target {
	identity := snap.Get(config.KeySSHKeyPath, "")
	if identity != "" {
		identity = config.ExpandPath(identity)
	}
	return Target{
		Address:      snap.Resolved(config.KeyTargetHost, ""),
		User:         snap.Resolved(config.KeyTargetUser, ""),
		Port:         snap.Int(config.KeySSHPort, DefaultSSHPort),
		IdentityFile: identity,
	}
}

// Valid reports whether the target carries a usable address.
// Empty and placeholder addresses are invalid and must never reach the network.
func (t Target) Valid() bool {
	return t.Address != "" && !config.IsPlaceholder(config.KeyTargetHost, t.Address)
}

// Destination returns the user@address form used by ssh.
func (t Target) Destination() string {
	if t.User == "" {
		return t.Address
	}
	return t.User + "@" + t.Address
}

// String renders the target for operator messages.
func (t Target) String() string {
	if t.Port != 0 && t.Port != DefaultSSHPort {
		return fmt.Sprintf("%s:%s", t.Destination(), strconv.Itoa(t.Port))
	}
	return t.Destination()
}
