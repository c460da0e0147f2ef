package entity

import (
	"database/sql/driver"
	"fmt"
)

// Role is an account's authorization level. Only the five declared values
// are valid; ParseRole, Scan and UnmarshalText reject anything else.
type Role string

const (
	RoleBanned Role = "banned"
	RoleMuted  Role = "muted"
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// Roles lists every valid role in ascending authority.
var Roles = []Role{RoleBanned, RoleMuted, RolePlayer, RoleAdmin, RoleOwner}

// ParseRole returns the Role named by s.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool { return r.Rank() >= 0 }

// Rank orders roles by authority: banned < muted < player < admin < owner.
// Unknown roles rank -1.
func (r Role) Rank() int {
	switch r {
	case RoleBanned:
		return 0
	case RoleMuted:
		return 1
	case RolePlayer:
		return 2
	case RoleAdmin:
		return 3
	case RoleOwner:
		return 4
	default:
		return -1
	}
}

// CanAuthenticate is false only for banned accounts.
func (r Role) CanAuthenticate() bool {
	switch r {
	case RoleMuted, RolePlayer, RoleAdmin, RoleOwner:
		return true
	case RoleBanned:
		return false
	default:
		return false
	}
}

// CanChat is false for banned and muted accounts. Chat itself lives in the
// client; the role is sent with every account so the client can gate its
// input box on this rule.
func (r Role) CanChat() bool {
	switch r {
	case RolePlayer, RoleAdmin, RoleOwner:
		return true
	case RoleBanned, RoleMuted:
		return false
	default:
		return false
	}
}

// CanManage reports whether the role may use admin operations at all.
func (r Role) CanManage() bool {
	switch r {
	case RoleAdmin, RoleOwner:
		return true
	case RoleBanned, RoleMuted, RolePlayer:
		return false
	default:
		return false
	}
}

// CanModify reports whether an actor with this role may change an account
// holding target. Owners may modify anyone, admins anyone but owners.
func (r Role) CanModify(target Role) bool {
	if !target.Valid() {
		return false
	}
	switch r {
	case RoleOwner:
		return true
	case RoleAdmin:
		return target != RoleOwner
	case RoleBanned, RoleMuted, RolePlayer:
		return false
	default:
		return false
	}
}

// CanGrant reports whether an actor with this role may assign newRole.
// Only owners grant ownership.
func (r Role) CanGrant(newRole Role) bool {
	if !newRole.Valid() {
		return false
	}
	switch r {
	case RoleOwner:
		return true
	case RoleAdmin:
		return newRole != RoleOwner
	case RoleBanned, RoleMuted, RolePlayer:
		return false
	default:
		return false
	}
}

// Scan implements sql.Scanner.
func (r *Role) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scan role: unsupported type %T", src)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %q", string(r))
	}
	return string(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
